package config

// DefaultFunctions is the function catalog used when config.toml does not list one.
func DefaultFunctions() []string {
	return []string{"Sum", "Average", "LinearRegression"}
}

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: GetDefaultDataDir(),
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Endpoint: EndpointConfig{
			Host: "http://localhost:3000",
			Path: DefaultChatPath,
		},
		Chat: ChatConfig{
			Functions: DefaultFunctions(),
		},
		Bench: BenchConfig{
			Host:       "http://localhost:11434",
			Model:      "deepseek-r1:32b",
			NumPredict: 100,
		},
	}
}

func GenerateSystemConfigTemplate() string {
	return `# farchat System Configuration
# Location: ~/.config/farchat/settings.toml
# This file uses TOML format: https://toml.io

# Directory where user config, keybindings, debug log and bench results are stored
data_directory = "~/.local/share/farchat"
`
}

func GenerateUserConfigTemplate() string {
	return `# farchat User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

[endpoint]
# Chat backend host
host = "http://localhost:3000"

# Chat path on the backend host
path = "/api/chat"

[chat]
# Function names offered in the function bar, in display order
functions = ["Sum", "Average", "LinearRegression"]

# Initial state of the Function Augmented Reasoning toggle
use_far = false

# Show a short note in the status bar when a request fails.
# Failures never add anything to the transcript.
show_errors = false

[bench]
# Ollama server used by "farchat bench"
host = "http://localhost:11434"
model = "deepseek-r1:32b"
num_predict = 100
`
}
