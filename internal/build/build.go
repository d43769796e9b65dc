package build

type Key struct{}

// InfoKey locates the build Info in a command context
var InfoKey = Key{}

// Info is populated from -ldflags at release time
type Info struct {
	Version string
	Commit  string
	Date    string
}

func (i *Info) String() string {
	return i.Version + " (" + i.Commit + ", " + i.Date + ")"
}
