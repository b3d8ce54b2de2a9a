package gekko

import (
	"github.com/gekko3d/scenegraph/nav"
)

// NavData returns how the object is represented in the navigation world.
func (b *ObjectBase) NavData() (nav.ObjectData, bool) {
	if b.nav == nil {
		return nav.ObjectData{}, false
	}
	return *b.nav, true
}

// SetNavigation gives the object a navigation representation. Live objects
// register at once; others register when they become live. Static meshes
// return the pending island builds.
func (b *ObjectBase) SetNavigation(fw *Framework, data nav.ObjectData) []*nav.IslandBuild {
	if b.nav != nil && b.live && fw != nil {
		fw.Navigation.RemoveObject(nav.ObjectId(b.id))
	}
	b.nav = &data
	if b.live && fw != nil {
		return b.registerNav(fw)
	}
	return nil
}

// ClearNavigation drops every navigation registration of the object.
func (b *ObjectBase) ClearNavigation(fw *Framework) {
	if b.nav == nil {
		return
	}
	if b.live && fw != nil {
		fw.Navigation.RemoveObject(nav.ObjectId(b.id))
	}
	b.nav = nil
	b.pastTransform = nil
}

func (b *ObjectBase) registerNav(fw *Framework) []*nav.IslandBuild {
	global := b.GlobalTransform()
	b.pastTransform = &global
	return fw.Navigation.AddObject(fw.Assets, nav.ObjectId(b.id), *b.nav, global.navTransform())
}

// syncNav pushes the global transform to navigation when it changed since
// the last push.
func (b *ObjectBase) syncNav(fw *Framework) {
	if b.nav == nil {
		return
	}
	global := b.GlobalTransform()
	if b.pastTransform != nil && *b.pastTransform == global {
		return
	}
	b.pastTransform = &global

	id := nav.ObjectId(b.id)
	switch b.nav.Kind {
	case nav.KindStaticMesh:
		fw.Navigation.SetIslandTransform(id, global.navTransform())
	case nav.KindDynamicCapsule:
		if !fw.Navigation.SetCharacterPosition(id, global.Position) {
			fw.Logger().Warnf("navigation character for object %d (%s) is missing", b.id, b.name)
		}
	}
}
