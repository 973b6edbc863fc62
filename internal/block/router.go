package block

import "log"

// dispatch applies a switch or plate effect to the source's linked block.
// on is true when the source turns on and false when it turns off.
func (r *Registry) dispatch(source *Entity, mode SwitchMode, on bool) {
	if source.linked == NoID {
		log.Printf("Warning: %s %q has no linked block", source.kind, source.name)
		return
	}
	target, ok := r.Get(source.linked)
	if !ok {
		// Linked block was destroyed
		return
	}

	switch mode {
	case ToggleShine:
		if target.visible {
			r.ShineBlock(target.id)
		} else {
			r.DeshineBlock(target.id)
		}
	case ToggleMovement:
		r.toggleMovable(target)
	case ToggleDisappear:
		if on {
			r.FullyDisable(target.id)
		} else {
			r.FullyEnable(target.id)
		}
	case ToggleAppear:
		door, ok := target.variant.(*Door)
		if !ok {
			log.Printf("Warning: %q is linked to appear/disappear but %q is a %s, not a door", source.name, target.name, target.kind)
			return
		}
		if on {
			door.Activate(r, target)
		} else {
			door.Deactivate(r, target)
		}
	default:
		log.Printf("Warning: %q has unknown switch mode %s", source.name, mode)
	}
}

func (r *Registry) toggleMovable(e *Entity) {
	e.movable = !e.movable
	if lf, ok := r.Get(e.lightFormID); ok {
		lf.movable = e.movable
	}
}
