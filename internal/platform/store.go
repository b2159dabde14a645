package platform

import "context"

// Store bundles the per-entity stores behind one handle so the HTTP
// layer can be wired against either PostgreSQL or memory.
type Store interface {
	Themes() ThemeStore
	Ideations() IdeationStore
	Investors() InvestorStore
	Investments() InvestmentStore
	Comments() CommentStore
	Attachments() AttachmentStore
	Boards() BoardStore
	Financials() FinancialStore
	News() NewsStore
	Chats() ChatStore
}

// ThemeStore reads the theme catalogue. Themes are seeded by
// migrations and not mutable through the API.
type ThemeStore interface {
	Find(ctx context.Context, id string) (*Theme, error)
	List(ctx context.Context) ([]*Theme, error)
}

// IdeationStore persists crowdfunding proposals.
type IdeationStore interface {
	Create(ctx context.Context, it *Ideation) error
	Find(ctx context.Context, id string) (*Ideation, error)
	// ListGroupedByTheme returns a window of ideations per theme,
	// newest first. When themeID is non-empty only that theme is
	// returned.
	ListGroupedByTheme(ctx context.Context, themeID string, offset, limit int) ([]*ThemeIdeations, error)
	ListByUser(ctx context.Context, userID string) ([]*Ideation, error)
	Update(ctx context.Context, id string, upd IdeationUpdate) (*Ideation, error)
	Delete(ctx context.Context, id string) error
	// IncrementViewCount bumps the counter unless the viewer owns the
	// ideation.
	IncrementViewCount(ctx context.Context, id, viewerID string) error
}

// InvestorStore persists investment companies.
type InvestorStore interface {
	Create(ctx context.Context, inv *Investor) error
	Find(ctx context.Context, id string) (*Investor, error)
	List(ctx context.Context, offset, limit int) ([]*Investor, error)
	Update(ctx context.Context, id string, upd InvestorUpdate) (*Investor, error)
	Delete(ctx context.Context, id string) error
}

// InvestmentStore persists investor-to-ideation funding records.
type InvestmentStore interface {
	Create(ctx context.Context, inv *Investment) error
	Find(ctx context.Context, id string) (*Investment, error)
	ListByIdeation(ctx context.Context, ideationID string) ([]*Investment, error)
	Update(ctx context.Context, id string, upd InvestmentUpdate) (*Investment, error)
	Delete(ctx context.Context, id string) error
}

// CommentStore persists comments attached to ideations.
type CommentStore interface {
	Create(ctx context.Context, c *Comment) error
	Find(ctx context.Context, id string) (*Comment, error)
	ListByRelated(ctx context.Context, relatedID string, offset, limit int) ([]*Comment, error)
	Update(ctx context.Context, id string, upd CommentUpdate) (*Comment, error)
	Delete(ctx context.Context, id string) error
}

// AttachmentStore persists file metadata.
type AttachmentStore interface {
	Create(ctx context.Context, a *Attachment) error
	Find(ctx context.Context, id string) (*Attachment, error)
	ListByRelated(ctx context.Context, relatedID string) ([]*Attachment, error)
	Delete(ctx context.Context, id string) error
}

// BoardStore persists announcement posts.
type BoardStore interface {
	Create(ctx context.Context, b *Board) error
	Find(ctx context.Context, id string) (*Board, error)
	List(ctx context.Context, category BoardCategory, offset, limit int) ([]*Board, error)
	Update(ctx context.Context, id string, upd BoardUpdate) (*Board, error)
	Delete(ctx context.Context, id string) error
}

// FinancialStore persists at most one plan per ideation.
type FinancialStore interface {
	Create(ctx context.Context, f *Financial) error
	FindByIdeation(ctx context.Context, ideationID string) (*Financial, error)
	Update(ctx context.Context, ideationID string, f *Financial) (*Financial, error)
	DeleteByIdeation(ctx context.Context, ideationID string) error
}

// NewsStore reads landing-page articles.
type NewsStore interface {
	Create(ctx context.Context, n *News) error
	Find(ctx context.Context, id string) (*News, error)
	List(ctx context.Context, offset, limit int) ([]*News, error)
}

// ChatStore persists rooms and message history.
type ChatStore interface {
	CreateRoom(ctx context.Context, room *ChatRoom) error
	FindRoom(ctx context.Context, id string) (*ChatRoom, error)
	ListRoomsByUser(ctx context.Context, userID string) ([]*ChatRoom, error)
	DeleteRoom(ctx context.Context, id string) error
	AppendMessage(ctx context.Context, msg *ChatMessage) error
	History(ctx context.Context, roomID string, offset, limit int) ([]*ChatMessage, error)
}
