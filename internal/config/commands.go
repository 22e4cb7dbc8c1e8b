package config

// Command is a named workspace command advertised to the editor.
type Command struct {
	Key   string
	Label string
	Query string
}

// Commands are advertised in the executeCommand capability.
var Commands = []Command{
	{
		Key:   "resolve_diagnostics",
		Label: "Resolve diagnostics",
		Query: "Resolve the diagnostics for this code.",
	},
	{
		Key:   "generate_docs",
		Label: "Generate documentation",
		Query: "Add documentation to this code.",
	},
	{
		Key:   "improve_code",
		Label: "Improve code",
		Query: "Improve this code.",
	},
	{
		Key:   "refactor_from_comment",
		Label: "Refactor code from a comment",
		Query: "Refactor this code based on the comment.",
	},
	{
		Key:   "write_test",
		Label: "Write a unit test",
		Query: "Write a unit test for this code. Do not include any imports.",
	},
}

// TriggerCharacters make the editor request completions when typed.
var TriggerCharacters = []string{"{", "(", " "}

// CommandKeys lists the keys of Commands.
func CommandKeys() []string {
	keys := make([]string, len(Commands))
	for i, c := range Commands {
		keys[i] = c.Key
	}
	return keys
}

// LookupCommand finds a command by key.
func LookupCommand(key string) (Command, bool) {
	for _, c := range Commands {
		if c.Key == key {
			return c, true
		}
	}
	return Command{}, false
}
