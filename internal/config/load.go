package config

// Load parses and validates the configuration file at path.
func Load(path string) (*Config, error) {
	p := NewLuaParser()
	defer p.Close()

	cfg, err := p.ParseFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
