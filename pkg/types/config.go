// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "apa-formatter/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SegmenterMode selects how raw lines are split into document sections.
type SegmenterMode string

const (
	// SegmenterDynamic walks the lines once and switches sections on the
	// "Abstract" and "References" sentinel lines.
	SegmenterDynamic SegmenterMode = "dynamic"

	// SegmenterFixed treats the first lines as fixed title-page slots and
	// looks for the abstract at a fixed position after them.
	SegmenterFixed SegmenterMode = "fixed"
)

// FormatterConfig holds the heuristics that drive segmentation, line
// classification, and reference parsing.
type FormatterConfig struct {
	// Segmenter selects the section segmenter: dynamic or fixed.
	Segmenter SegmenterMode `json:"segmenter" yaml:"segmenter"`

	// TitlePageLines is the number of title-page slots (default 7).
	TitlePageLines int `json:"title_page_lines" yaml:"title_page_lines"`

	// AbstractWordLimit truncates the abstract paragraph (default 250, 0 disables).
	AbstractWordLimit int `json:"abstract_word_limit" yaml:"abstract_word_limit"`

	// BlockQuoteWords is the word count above which a body line is a block quote (default 40).
	BlockQuoteWords int `json:"block_quote_words" yaml:"block_quote_words"`

	// HeadingMaxWords is the exclusive upper bound on words in a heading line (default 10).
	HeadingMaxWords int `json:"heading_max_words" yaml:"heading_max_words"`

	// SmallWords overrides the words kept lowercase by title case.
	SmallWords []string `json:"small_words,omitempty" yaml:"small_words,omitempty"`

	// OrganizationKeywords overrides the keywords that mark a group author.
	OrganizationKeywords []string `json:"organization_keywords,omitempty" yaml:"organization_keywords,omitempty"`
}

// RenderConfig holds the typographic settings applied by the renderers.
type RenderConfig struct {
	// Font is the body font family (default "Times New Roman").
	Font string `json:"font" yaml:"font"`

	// FontSize is the font size in points (default 12).
	FontSize int `json:"font_size" yaml:"font_size"`

	// LineSpacing is the line spacing multiple (default 2.0).
	LineSpacing float64 `json:"line_spacing" yaml:"line_spacing"`

	// IndentInches is the paragraph and hanging indent (default 0.5).
	IndentInches float64 `json:"indent_inches" yaml:"indent_inches"`

	// ImageWidthInches is the width of embedded images (default 4.5).
	ImageWidthInches float64 `json:"image_width_inches" yaml:"image_width_inches"`

	// PageNumbers adds a right-aligned page number to the DOCX header.
	PageNumbers bool `json:"page_numbers" yaml:"page_numbers"`
}

// Cleanup providers.
const (
	CleanupHuggingFace = "huggingface"
	CleanupOpenAI      = "openai"
)

// CleanupConfig holds settings for the optional text-cleanup service.
type CleanupConfig struct {
	HTTPConfig `yaml:",inline"`

	// Provider selects the backend: "" (disabled), "huggingface", or "openai".
	Provider string `json:"provider" yaml:"provider"`

	// Model is the provider-specific model identifier.
	Model string `json:"model" yaml:"model"`

	// APIKey authenticates against the provider.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// RequestsPerSecond caps outgoing cleanup calls (default 1).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`

	// MaxRetries is the number of retries on rate-limit responses (default 2).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ConvertConfig holds settings for the container-backed extractor used for
// legacy document formats.
type ConvertConfig struct {
	// Image is the converter image (e.g. "markitdown:latest"); "" disables
	// container conversion.
	Image string `json:"image" yaml:"image"`

	// Extensions lists the file extensions routed to the container.
	Extensions []string `json:"extensions" yaml:"extensions"`

	// Timeout bounds a single container run.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// ServerConfig holds settings for the HTTP surface.
type ServerConfig struct {
	// Addr is the listen address (default ":8000").
	Addr string `json:"addr" yaml:"addr"`

	// AllowedOrigins lists CORS origins; entries may be "*" or contain one "*" wildcard.
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins"`

	// MaxUploadBytes caps the request body size (default 10 MiB).
	MaxUploadBytes int64 `json:"max_upload_bytes" yaml:"max_upload_bytes"`
}

// Config groups all component configurations.
type Config struct {
	Formatter FormatterConfig `json:"formatter" yaml:"formatter"`
	Render    RenderConfig    `json:"render" yaml:"render"`
	Convert   ConvertConfig   `json:"convert" yaml:"convert"`
	Cleanup   CleanupConfig   `json:"cleanup" yaml:"cleanup"`
	Server    ServerConfig    `json:"server" yaml:"server"`
}

// DefaultConfig returns the APA 7 defaults.
func DefaultConfig() Config {
	return Config{
		Formatter: FormatterConfig{
			Segmenter:         SegmenterDynamic,
			TitlePageLines:    7,
			AbstractWordLimit: 250,
			BlockQuoteWords:   40,
			HeadingMaxWords:   10,
		},
		Render: RenderConfig{
			Font:             "Times New Roman",
			FontSize:         12,
			LineSpacing:      2.0,
			IndentInches:     0.5,
			ImageWidthInches: 4.5,
			PageNumbers:      true,
		},
		Convert: ConvertConfig{
			Extensions: []string{".doc", ".odt", ".rtf", ".epub"},
			Timeout:    60 * time.Second,
		},
		Cleanup: CleanupConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   20 * time.Second,
				UserAgent: "apa-formatter/0.1",
			},
			RequestsPerSecond: 1,
			MaxRetries:        2,
		},
		Server: ServerConfig{
			Addr: ":8000",
			AllowedOrigins: []string{
				"http://localhost:3000",
				"https://apa-formatter.vercel.app",
				"https://*.vercel.app",
			},
			MaxUploadBytes: 10 << 20,
		},
	}
}

// WithDefaults fills zero-valued fields of c from DefaultConfig.
func (c FormatterConfig) WithDefaults() FormatterConfig {
	d := DefaultConfig().Formatter
	if c.Segmenter == "" {
		c.Segmenter = d.Segmenter
	}
	if c.TitlePageLines <= 0 {
		c.TitlePageLines = d.TitlePageLines
	}
	if c.AbstractWordLimit < 0 {
		c.AbstractWordLimit = 0
	}
	if c.BlockQuoteWords <= 0 {
		c.BlockQuoteWords = d.BlockQuoteWords
	}
	if c.HeadingMaxWords <= 0 {
		c.HeadingMaxWords = d.HeadingMaxWords
	}
	return c
}

// WithDefaults fills zero-valued fields of c from DefaultConfig.
func (c RenderConfig) WithDefaults() RenderConfig {
	d := DefaultConfig().Render
	if c.Font == "" {
		c.Font = d.Font
	}
	if c.FontSize <= 0 {
		c.FontSize = d.FontSize
	}
	if c.LineSpacing <= 0 {
		c.LineSpacing = d.LineSpacing
	}
	if c.IndentInches <= 0 {
		c.IndentInches = d.IndentInches
	}
	if c.ImageWidthInches <= 0 {
		c.ImageWidthInches = d.ImageWidthInches
	}
	return c
}
