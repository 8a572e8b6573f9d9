package domain

// DefaultModel is the model selected when the caller does not pick one.
const DefaultModel = "deepseek/deepseek-chat-v3-0324:free"

// ModelOption is one entry of the model picker.
type ModelOption struct {
	// Label is what the user sees.
	Label string `json:"label" yaml:"label" mapstructure:"label"`

	// Value is the model identifier sent upstream.
	Value string `json:"value" yaml:"value" mapstructure:"value"`
}

// Provider returns the provider this option routes to.
func (m ModelOption) Provider() ProviderType {
	return SelectProvider(m.Value)
}

// DefaultModels returns the built-in model catalog.
// A fresh slice is returned on every call so callers may modify it.
func DefaultModels() []ModelOption {
	return []ModelOption{
		{Label: "DeepSeek v3.0324 (Free)", Value: "deepseek/deepseek-chat-v3-0324:free"},
		{Label: "Qwen 14B (Free)", Value: "qwen/qwen-14b:free"},
		{Label: "Qwen Turbo (DashScope)", Value: "qwen-turbo"},
		{Label: "Qwen Plus (Balance)", Value: "qwen-plus"},
		{Label: "Qwen Max (Complex Tasks)", Value: "qwen-max"},
	}
}

// FindModel looks up a catalog entry by its value.
func FindModel(catalog []ModelOption, value string) (ModelOption, bool) {
	for _, m := range catalog {
		if m.Value == value {
			return m, true
		}
	}
	return ModelOption{}, false
}
