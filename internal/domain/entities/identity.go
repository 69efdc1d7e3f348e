package entities

// Identity is the organization stamp written into every processed file.
type Identity struct {
	Organization string
	Author       string
	Contact      string
	ProjectLabel string
	Copyright    string
}

func (i Identity) HandlerName() string {
	return "ISO Media file produced by " + i.Organization + " Inc."
}
