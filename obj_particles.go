package gekko

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// ParticleEmitter parameterizes a CPU particle system.
type ParticleEmitter struct {
	MaxParticles int

	SpawnRate        float32    // particles per second
	LifetimeRange    [2]float32 // seconds
	StartSpeedRange  [2]float32
	StartSizeRange   [2]float32
	Gravity          float32 // downward acceleration
	Drag             float32 // per second
	ConeAngleDegrees float32 // spread around the emitter's up axis
}

// ParticleSystem simulates particles in world space and submits them as
// instance transforms under its Instance name.
type ParticleSystem struct {
	*ObjectBase

	Emitter  ParticleEmitter
	Enabled  bool
	Instance string

	pool     particlePool
	spawnAcc float32
	rng      *rand.Rand
}

// particlePool keeps live particles packed at the front.
type particlePool struct {
	pos   []mgl32.Vec3
	vel   []mgl32.Vec3
	age   []float32
	life  []float32
	size  []float32
	alive int
}

func (p *particlePool) resize(n int) {
	if n < 1 {
		n = 1
	}
	if len(p.pos) == n {
		return
	}
	p.pos = make([]mgl32.Vec3, n)
	p.vel = make([]mgl32.Vec3, n)
	p.age = make([]float32, n)
	p.life = make([]float32, n)
	p.size = make([]float32, n)
	p.alive = 0
}

func (p *particlePool) kill(i int) {
	last := p.alive - 1
	p.pos[i] = p.pos[last]
	p.vel[i] = p.vel[last]
	p.age[i] = p.age[last]
	p.life[i] = p.life[last]
	p.size[i] = p.size[last]
	p.alive--
}

func NewParticleSystem(name string, emitter ParticleEmitter) *ParticleSystem {
	ps := &ParticleSystem{
		ObjectBase: NewObjectBase(name),
		Emitter:    emitter,
		Enabled:    true,
		Instance:   name,
	}
	// Seeded by id so a scene replays identically.
	ps.rng = rand.New(rand.NewSource(int64(ps.Id())))
	return ps
}

func (ps *ParticleSystem) Alive() int { return ps.pool.alive }

func lerp(a, b, t float32) float32 { return a + (b-a)*t }

// direction samples uniformly inside a cone around the rotated up axis.
func (ps *ParticleSystem) direction(rot mgl32.Quat) mgl32.Vec3 {
	up := mgl32.Vec3{0, 1, 0}
	if ps.Emitter.ConeAngleDegrees <= 0 {
		return rot.Rotate(up).Normalize()
	}
	thetaMax := float64(mgl32.DegToRad(ps.Emitter.ConeAngleDegrees))
	cosTheta := lerp(float32(math.Cos(thetaMax)), 1, ps.rng.Float32())
	sinTheta := float32(math.Sqrt(float64(1 - cosTheta*cosTheta)))
	phi := 2 * math.Pi * float64(ps.rng.Float32())
	local := mgl32.Vec3{
		float32(math.Cos(phi)) * sinTheta,
		cosTheta,
		float32(math.Sin(phi)) * sinTheta,
	}
	return rot.Rotate(local).Normalize()
}

// Burst spawns up to n particles at once.
func (ps *ParticleSystem) Burst(n int) {
	ps.pool.resize(ps.Emitter.MaxParticles)
	ps.spawn(n, ps.GlobalTransform())
}

func (ps *ParticleSystem) spawn(n int, at Transform) {
	if free := len(ps.pool.pos) - ps.pool.alive; n > free {
		n = free
	}
	e := ps.Emitter
	rot := at.Quat()
	for i := 0; i < n; i++ {
		idx := ps.pool.alive
		ps.pool.alive++
		ps.pool.pos[idx] = at.Position
		ps.pool.vel[idx] = ps.direction(rot).Mul(lerp(e.StartSpeedRange[0], e.StartSpeedRange[1], ps.rng.Float32()))
		ps.pool.age[idx] = 0
		ps.pool.life[idx] = lerp(e.LifetimeRange[0], e.LifetimeRange[1], ps.rng.Float32())
		ps.pool.size[idx] = lerp(e.StartSizeRange[0], e.StartSizeRange[1], ps.rng.Float32())
	}
}

func (ps *ParticleSystem) Update(fw *Framework) {
	if ps.Emitter.MaxParticles <= 0 {
		return
	}
	dt := fw.Time.DtSeconds()
	if dt <= 0 {
		return
	}
	ps.pool.resize(ps.Emitter.MaxParticles)

	if ps.Enabled {
		ps.spawnAcc += ps.Emitter.SpawnRate * dt
		n := int(ps.spawnAcc)
		ps.spawnAcc -= float32(n)
		ps.spawn(n, ps.GlobalTransform())
	}

	drag := float32(math.Max(0, float64(1-ps.Emitter.Drag*dt)))
	gravity := mgl32.Vec3{0, -ps.Emitter.Gravity * dt, 0}
	for i := 0; i < ps.pool.alive; {
		age := ps.pool.age[i] + dt
		if age >= ps.pool.life[i] {
			ps.pool.kill(i)
			continue
		}
		v := ps.pool.vel[i].Add(gravity).Mul(drag)
		ps.pool.vel[i] = v
		ps.pool.pos[i] = ps.pool.pos[i].Add(v.Mul(dt))
		ps.pool.age[i] = age
		i++
	}
}

func (ps *ParticleSystem) Render(fw *Framework) {
	for i := 0; i < ps.pool.alive; i++ {
		p, s := ps.pool.pos[i], ps.pool.size[i]
		m := mgl32.Translate3D(p.X(), p.Y(), p.Z()).Mul4(mgl32.Scale3D(s, s, s))
		fw.Render.AddInstancePosition(ps.Instance, m)
	}
}

func (ps *ParticleSystem) Call(fw *Framework, name string, args []string) (string, bool) {
	switch name {
	case "enable":
		ps.Enabled = true
		return "", true
	case "disable":
		ps.Enabled = false
		return "", true
	case "burst":
		v, err := parseFloats(args, 1)
		if err != nil {
			fw.Logger().Warnf("%s.burst: %v", ps.Name(), err)
			return "", false
		}
		ps.Burst(int(v[0]))
		return "", true
	}
	return "", false
}

func (ps *ParticleSystem) Release(fw *Framework) {
	ps.pool = particlePool{}
}
