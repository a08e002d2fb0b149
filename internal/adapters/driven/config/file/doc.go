// Package file keeps ragtube's user-editable state under ~/.ragtube:
// config.toml through ConfigStore and prompts/*.txt through PromptStore.
package file
