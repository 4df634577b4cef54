package config

import "time"

// Config holds the application configuration
type Config struct {
	Port      int
	DataDir   string
	ModelPath string
	Version   string
	Page      PageConfig
	Submit    SubmitConfig
}

// PageConfig names the DOM elements the form page and its script work with
type PageConfig struct {
	FormID      string
	MessageID   string
	BoxID       string
	ElapsedID   string
	HeaderRatio float64
	Since       time.Time
}

// SubmitConfig configures the client side of a form submission
type SubmitConfig struct {
	// ContentType is sent with the JSON body. The page has always sent
	// text/plain and the predict endpoint accepts either.
	ContentType string
	Locale      string
}

// DefaultPageConfig returns the element ids used by the bundled page
func DefaultPageConfig() PageConfig {
	return PageConfig{
		FormID:      "byt-form",
		MessageID:   "myData",
		BoxID:       "pred-box",
		ElapsedID:   "time-elapsed",
		HeaderRatio: 1.5,
		Since:       time.Date(2021, time.July, 6, 18, 0, 0, 0, time.Local),
	}
}

// DefaultSubmitConfig returns the submission defaults
func DefaultSubmitConfig() SubmitConfig {
	return SubmitConfig{
		ContentType: "text/plain",
		Locale:      "en-US",
	}
}
