package fieldsafe

// emergencyFlag is the per-field emergency mode override. It is purely a
// boolean: validation loosening is delegated to ValidateEmergency and the
// urgent visual treatment belongs to the presentational layer. The flag is
// never persisted and never shared between fields; it resets to the
// configured initial value on remount.
//
// Guarded by the owning controller's lock.
type emergencyFlag struct {
	active bool
}

func (f *emergencyFlag) toggle() bool {
	f.active = !f.active
	return f.active
}

func (f *emergencyFlag) set(v bool) {
	f.active = v
}

func (f *emergencyFlag) isActive() bool {
	return f.active
}
