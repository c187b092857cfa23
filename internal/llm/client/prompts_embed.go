package client

import "embed"

// embeddedPrompts holds the built-in prompt templates so packaged executables
// can load them without needing access to the source tree.
//
//go:embed prompts/*.txt
var embeddedPrompts embed.FS

func itemSystemPrompt() string {
	data, err := embeddedPrompts.ReadFile("prompts/item_system.txt")
	if err != nil {
		// The prompt is compiled in; a read failure is a packaging bug.
		panic("missing embedded prompt: " + err.Error())
	}
	return string(data)
}
