package cli

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config string `long:"config" description:"Path to config file" default:""`
	JSON   bool   `long:"json" description:"Output in JSON format"`
}

// StartCommand — begin tracking a project now (or at a given time).
type StartCommand struct {
	At             string `long:"at" description:"Start time instead of now"`
	ConfirmProject bool   `short:"c" long:"confirm-new-project" description:"Ask before creating a project that does not exist yet"`
	ConfirmTags    bool   `short:"b" long:"confirm-new-tags" description:"Ask before creating a tag that does not exist yet"`

	Args struct {
		Project string   `positional-arg-name:"PROJECT" required:"yes"`
		Tags    []string `positional-arg-name:"+TAG"`
	} `positional-args:"yes"`

	globals *GlobalFlags
}

// StopCommand — stop the currently running frame.
type StopCommand struct {
	At string `long:"at" description:"Stop time instead of now"`

	globals *GlobalFlags
}

// AddCommand — record a finished frame with both bounds.
type AddCommand struct {
	From           string `short:"f" long:"from" description:"Frame start time" required:"yes"`
	To             string `short:"t" long:"to" description:"Frame end time" required:"yes"`
	ConfirmProject bool   `short:"c" long:"confirm-new-project" description:"Ask before creating a project that does not exist yet"`
	ConfirmTags    bool   `short:"b" long:"confirm-new-tags" description:"Ask before creating a tag that does not exist yet"`

	Args struct {
		Project string   `positional-arg-name:"PROJECT" required:"yes"`
		Tags    []string `positional-arg-name:"+TAG"`
	} `positional-args:"yes"`

	globals *GlobalFlags
}

// LogCommand — report frames aggregated by day.
type LogCommand struct {
	From           string   `short:"f" long:"from" description:"Report frames started after this time (default: 7 days ago)"`
	To             string   `short:"t" long:"to" description:"Report frames ended before this time (default: tomorrow)"`
	Projects       []string `short:"p" long:"project" description:"Only include this project (repeatable)"`
	IgnoreProjects []string `long:"ignore-project" description:"Exclude this project (repeatable)"`
	Tags           []string `short:"T" long:"tag" description:"Only include frames with this tag (repeatable)"`
	IgnoreTags     []string `long:"ignore-tag" description:"Exclude frames with this tag (repeatable)"`
	Current        bool     `short:"c" long:"current" description:"Include the running frame"`
	Reverse        bool     `short:"r" long:"reverse" description:"Oldest day first"`

	globals *GlobalFlags
}

// StatusCommand — show the running frame, if any.
type StatusCommand struct {
	ShowProject bool `short:"p" long:"project" description:"Only output the project"`
	ShowTags    bool `short:"t" long:"tags" description:"Only output the tags"`
	ShowElapsed bool `short:"e" long:"elapsed" description:"Only output the elapsed time"`

	globals *GlobalFlags
}

// EditCommand — rewrite a frame's bounds, project, or tags.
type EditCommand struct {
	Start   string   `long:"start" description:"New start time (skips the editor)"`
	End     string   `long:"end" description:"New end time, or \"none\" to reopen the frame (skips the editor)"`
	Project string   `long:"project" description:"New project (skips the editor)"`
	Tags    []string `long:"tag" description:"Replacement tag (repeatable, skips the editor)"`

	Args struct {
		ID string `positional-arg-name:"ID"`
	} `positional-args:"yes"`

	globals *GlobalFlags
}

// RemoveCommand — soft-delete a frame.
type RemoveCommand struct {
	Force bool `short:"f" long:"force" description:"Don't ask for confirmation"`

	Args struct {
		ID string `positional-arg-name:"ID" required:"yes"`
	} `positional-args:"yes"`

	globals *GlobalFlags
}

// FramesCommand — list the ids of all recorded frames.
type FramesCommand struct {
	globals *GlobalFlags
}

// ProjectsCommand — list all existing projects.
type ProjectsCommand struct {
	globals *GlobalFlags
}

// TagsCommand — list all existing tags.
type TagsCommand struct {
	globals *GlobalFlags
}
