package main

type config struct {
	API              apiConfig              `yaml:"api"`
	ServiceDiscovery serviceDiscoveryConfig `yaml:"serviceDiscovery"`
	Jaeger           jaegerConfig           `yaml:"jaeger"`
	Providers        providersConfig        `yaml:"providers"`
	Catalog          catalogConfig          `yaml:"catalog"`
	Feed             feedConfig             `yaml:"feed"`
}

type apiConfig struct {
	Port int `yaml:"port"`
}

type serviceDiscoveryConfig struct {
	Consul consulConfig `yaml:"consul"`
}

type consulConfig struct {
	Address string `yaml:"address"`
}

type jaegerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type providersConfig struct {
	Tmdb tmdbConfig `yaml:"tmdb"`
	Imdb imdbConfig `yaml:"imdb"`
	Omdb omdbConfig `yaml:"omdb"`
}

type tmdbConfig struct {
	Address string `yaml:"address"`
	Token   string `yaml:"token"`
}

type imdbConfig struct {
	Address string `yaml:"address"`
}

type omdbConfig struct {
	Address string `yaml:"address"`
	APIKey  string `yaml:"apiKey"`
	Query   string `yaml:"query"`
}

type catalogConfig struct {
	MaxPages int `yaml:"maxPages"`
}

type feedConfig struct {
	LowWatermark int `yaml:"lowWatermark"`
}
