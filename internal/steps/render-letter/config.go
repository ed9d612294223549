// internal/steps/render-letter/config.go
package renderletter

type Config struct {
	// OutputDir receives generated letters. Created on first render.
	OutputDir string
	// BaseURL prefixes the retrieval path placed on the document handle.
	BaseURL string
}

func DefaultConfig() *Config {
	return &Config{
		OutputDir: "data/pdfs",
		BaseURL:   "/pdf",
	}
}
