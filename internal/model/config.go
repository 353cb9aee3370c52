package model

type Config struct {
	DataDir         string `yaml:"data_dir"`
	Editor          string `yaml:"editor"`
	DefaultPriority string `yaml:"default_priority"` // medium or none
}

func DefaultConfig() Config {
	return Config{
		DataDir:         "~/.config/taskdeck/data",
		Editor:          "vim",
		DefaultPriority: "medium",
	}
}
