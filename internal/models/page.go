package models

// PageState is everything the page renders. It lives only for the session,
// apart from Account which is also cached on disk.
type PageState struct {
	Account      string
	Lamports     uint64
	Balance      float64
	Receiver     string
	Amount       string
	ExplorerLink string
	UploadURL    string
	MintLink     string
	StatusText   string
}

// Connected reports whether a wallet account is set.
func (s PageState) Connected() bool {
	return s.Account != ""
}

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
	NoticeInfo    NoticeLevel = "info"
)

// Notice is a short user-facing message, the terminal counterpart of a toast.
type Notice struct {
	Level   NoticeLevel
	Message string
}
