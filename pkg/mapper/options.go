package mapper

// UndefinedPropertyHandler is called for input keys that have no member on the
// target, instead of failing or logging.
type UndefinedPropertyHandler func(target any, key string, value any)

// Factory builds a new, empty instance. Pointers to structs are expected for
// types that are mapped recursively.
type Factory func() any

type Options struct {
	// ExceptionWhenUndefinedProperty fails on input keys without a member, and on
	// members without an accessible setter.
	ExceptionWhenUndefinedProperty bool

	// ExceptionWhenMissingData fails when a member flagged required is absent.
	ExceptionWhenMissingData bool

	// EnforceMapType requires the top-level input of Map to be an object.
	EnforceMapType bool

	// StrictObjectTypeChecking forbids building object members from flat values.
	StrictObjectTypeChecking bool

	// ExceptionWhenNullType fails when null is given for a non-nullable member.
	ExceptionWhenNullType bool

	// IgnoreVisibility allows writing unexported fields.
	IgnoreVisibility bool

	// OverrideClassMap substitutes a declared type name with another type name.
	OverrideClassMap map[string]string

	// OverrideFactories substitutes a declared type name with a factory.
	OverrideFactories map[string]Factory

	UndefinedPropertyHandler UndefinedPropertyHandler
}

func DefaultOptions() Options {
	return Options{
		EnforceMapType:        true,
		ExceptionWhenNullType: true,
		OverrideClassMap:      map[string]string{},
		OverrideFactories:     map[string]Factory{},
	}
}

type Option func(*Mapper)

func WithExceptionWhenUndefinedProperty(enabled bool) Option {
	return func(m *Mapper) {
		m.opts.ExceptionWhenUndefinedProperty = enabled
	}
}

func WithExceptionWhenMissingData(enabled bool) Option {
	return func(m *Mapper) {
		m.opts.ExceptionWhenMissingData = enabled
	}
}

func WithEnforceMapType(enabled bool) Option {
	return func(m *Mapper) {
		m.opts.EnforceMapType = enabled
	}
}

func WithStrictObjectTypeChecking(enabled bool) Option {
	return func(m *Mapper) {
		m.opts.StrictObjectTypeChecking = enabled
	}
}

func WithExceptionWhenNullType(enabled bool) Option {
	return func(m *Mapper) {
		m.opts.ExceptionWhenNullType = enabled
	}
}

func WithIgnoreVisibility(enabled bool) Option {
	return func(m *Mapper) {
		m.opts.IgnoreVisibility = enabled
	}
}

// WithOverrideClass makes every instance of declared be built as substitute.
// Both names may be qualified ("example.com/pkg.Type") or bare.
func WithOverrideClass(declared, substitute string) Option {
	return func(m *Mapper) {
		m.opts.OverrideClassMap[declared] = substitute
	}
}

// WithOverrideClassMap adds every entry of overrides.
func WithOverrideClassMap(overrides map[string]string) Option {
	return func(m *Mapper) {
		for declared, substitute := range overrides {
			m.opts.OverrideClassMap[declared] = substitute
		}
	}
}

func WithOverrideFactory(declared string, factory Factory) Option {
	return func(m *Mapper) {
		m.opts.OverrideFactories[declared] = factory
	}
}

func WithUndefinedPropertyHandler(handler UndefinedPropertyHandler) Option {
	return func(m *Mapper) {
		m.opts.UndefinedPropertyHandler = handler
	}
}

func WithLogger(logger Logger) Option {
	return func(m *Mapper) {
		m.SetLogger(logger)
	}
}

// WithRegistry shares a type registry between mappers.
func WithRegistry(registry *Registry) Option {
	return func(m *Mapper) {
		m.registry = registry
	}
}
