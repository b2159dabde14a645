// Package platform holds the domain model of the ideation marketplace:
// themes, ideation proposals, investors and their investments, comments,
// attachments, notice boards, financial plans, news and chat rooms.
package platform

import "time"

// IdeationStatus tracks a proposal through its funding round.
type IdeationStatus string

const (
	StatusBeforeStart IdeationStatus = "before_start"
	StatusInProgress  IdeationStatus = "in_progress"
	StatusClosed      IdeationStatus = "closed"
)

// Valid reports whether the status is a known value.
func (s IdeationStatus) Valid() bool {
	switch s {
	case StatusBeforeStart, StatusInProgress, StatusClosed:
		return true
	}
	return false
}

// Theme is a business category that ideations are filed under.
type Theme struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image,omitempty"`
	Description string    `json:"description,omitempty"`
	PSRValue    float64   `json:"psr_value,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Ideation is a crowdfunding proposal owned by the user who posted it.
type Ideation struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	Content          string         `json:"content"`
	ThemeID          string         `json:"theme_id"`
	PresentationURL  string         `json:"presentation_url,omitempty"`
	PresentationDate *time.Time     `json:"presentation_date,omitempty"`
	CloseDate        *time.Time     `json:"close_date,omitempty"`
	Status           IdeationStatus `json:"status"`
	UserID           string         `json:"user_id"`
	ViewCount        int64          `json:"view_count"`
	InvestmentGoal   int64          `json:"investment_goal,omitempty"`
	InvestmentTerms  string         `json:"investment_terms,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// IdeationUpdate whitelists the mutable ideation fields. The owner and
// view count can never be written through an update request.
type IdeationUpdate struct {
	Title            *string
	Content          *string
	ThemeID          *string
	PresentationURL  *string
	PresentationDate *time.Time
	CloseDate        *time.Time
	Status           *IdeationStatus
	InvestmentGoal   *int64
	InvestmentTerms  *string
}

// ThemeIdeations groups a theme with a page of its ideations.
type ThemeIdeations struct {
	Theme     Theme       `json:"theme"`
	Ideations []*Ideation `json:"ideations"`
}

// Investor is an investment company operating as a group of users.
type Investor struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	Description           string    `json:"description,omitempty"`
	Image                 string    `json:"image,omitempty"`
	AssetsUnderManagement string    `json:"assets_under_management,omitempty"`
	InvestmentCount       int64     `json:"investment_count"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// InvestorUpdate whitelists the mutable investor fields.
type InvestorUpdate struct {
	Name                  *string
	Description           *string
	Image                 *string
	AssetsUnderManagement *string
}

// Investment links an investor to an ideation with an amount.
type Investment struct {
	ID         string    `json:"id"`
	IdeationID string    `json:"ideation_id"`
	InvestorID string    `json:"investor_id"`
	Amount     int64     `json:"amount"`
	Approved   bool      `json:"approved"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// InvestmentUpdate whitelists the mutable investment fields.
type InvestmentUpdate struct {
	Amount   *int64
	Approved *bool
}

// Comment is attached to an ideation by its author.
type Comment struct {
	ID        string    `json:"id"`
	RelatedID string    `json:"related_id"`
	Content   string    `json:"content"`
	Rating    int       `json:"rating,omitempty"` // 1..5, 0 when unrated
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentUpdate whitelists the mutable comment fields.
type CommentUpdate struct {
	Content *string
	Rating  *int
}

// AttachmentKind distinguishes gallery images from downloadable files.
type AttachmentKind string

const (
	AttachmentImage AttachmentKind = "image"
	AttachmentFile  AttachmentKind = "file"
)

// Attachment records file metadata; the bytes live in external object
// storage referenced by FilePath.
type Attachment struct {
	ID        string         `json:"id"`
	FileName  string         `json:"file_name"`
	FilePath  string         `json:"file_path"`
	RelatedID string         `json:"related_id"`
	Kind      AttachmentKind `json:"kind"`
	CreatedAt time.Time      `json:"created_at"`
}

// BoardCategory partitions the notice board.
type BoardCategory string

const (
	BoardNotice BoardCategory = "notice"
	BoardFAQ    BoardCategory = "faq"
	BoardEvent  BoardCategory = "event"
)

// Board is an announcement post. Only administrators write boards.
type Board struct {
	ID        string        `json:"id"`
	Category  BoardCategory `json:"category"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// BoardUpdate whitelists the mutable board fields.
type BoardUpdate struct {
	Category *BoardCategory
	Title    *string
	Content  *string
}

// Financial is the cost/expense plan attached to an ideation.
type Financial struct {
	ID         string `json:"id"`
	IdeationID string `json:"ideation_id"`

	// Cost items.
	DirectMaterial    float64 `json:"direct_material"`
	DirectExpense     float64 `json:"direct_expense"`
	ItemInput         float64 `json:"item_input"`
	DirectLabor       float64 `json:"direct_labor"`
	ManufacturingCost float64 `json:"manufacturing_cost"`
	ProfitRate        float64 `json:"profit_rate"`
	SalePrice         float64 `json:"sale_price"`

	// Selling, general and administrative items.
	Salary          float64 `json:"salary"`
	OfficeRent      float64 `json:"office_rent"`
	AdCost          float64 `json:"ad_cost"`
	BusinessExpense float64 `json:"business_expense"`
	MaintenanceCost float64 `json:"maintenance_cost"`
	Contingency     float64 `json:"contingency"`
	TotalExpense    float64 `json:"total_expense"`

	// Yearly increase rates.
	SalaryIncreaseRate          float64 `json:"salary_increase_rate"`
	OfficeRentIncreaseRate      float64 `json:"office_rent_increase_rate"`
	AdCostIncreaseRate          float64 `json:"ad_cost_increase_rate"`
	BusinessExpenseIncreaseRate float64 `json:"business_expense_increase_rate"`
	MaintenanceCostIncreaseRate float64 `json:"maintenance_cost_increase_rate"`
	ContingencyIncreaseRate     float64 `json:"contingency_increase_rate"`

	// Per-year projections.
	TradeCounts    []int64 `json:"trade_counts,omitempty"`
	EmployeeCounts []int64 `json:"employee_counts,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// News is a magazine article shown on the landing page.
type News struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatRoom links two or more participants.
type ChatRoom struct {
	ID        string    `json:"id"`
	UserIDs   []string  `json:"user_ids"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatMessage is one relayed and persisted chat line.
type ChatMessage struct {
	ID       string    `json:"id"`
	RoomID   string    `json:"room_id"`
	UserID   string    `json:"user_id"`
	UserName string    `json:"user_name"`
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sent_at"`
}
