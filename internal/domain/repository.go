package domain

// User identifies a repository owner on the source-control provider.
type User struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

// Repository is a repository as reported by the CI API: everything the
// source-control provider knows about, annotated with whether it has been
// registered for builds. ID is empty until the repository is registered.
type Repository struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	HTMLURL      string `json:"html_url"`
	SSHURL       string `json:"ssh_url"`
	Owner        User   `json:"owner"`
	IsRegistered bool   `json:"is_registered"`
}

// Linkable reports whether the repository can be the target of a detail view.
// A repository with no ID is known to the source-control provider but not to
// the CI system, so there is nothing to link to.
func (r Repository) Linkable() bool {
	return r.ID != "" && r.IsRegistered
}

// RegisterPayload is the body of a repository registration request.
type RegisterPayload struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}
