package loom

// Module groups related provider registrations so subsystems can be
// assembled and installed as one unit.
type Module struct {
	name       string
	providers  []func(c *Container) error
	submodules []*Module
}

func NewModule(name string) *Module {
	return &Module{name: name}
}

func (m *Module) Name() string {
	return m.name
}

// Register appends a registration step. Typical usage wraps Provide:
//
//	m.Register(func(c *loom.Container) error {
//	    return loom.Provide(c, newDatabase, loom.WithDependencies(loom.KeyOf[*Config]()))
//	})
func (m *Module) Register(fn func(c *Container) error) *Module {
	m.providers = append(m.providers, fn)
	return m
}

// Include nests another module; its registrations run before this
// module's own.
func (m *Module) Include(sub *Module) *Module {
	m.submodules = append(m.submodules, sub)
	return m
}

// Install applies the modules' registrations to the container, in
// order, stopping at the first failure.
func (c *Container) Install(modules ...*Module) error {
	for _, m := range modules {
		if err := m.apply(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Module) apply(c *Container) error {
	for _, sub := range m.submodules {
		if err := sub.apply(c); err != nil {
			return err
		}
	}
	for _, register := range m.providers {
		if err := register(c); err != nil {
			return err
		}
	}
	return nil
}
