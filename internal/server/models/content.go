package models

import "time"

// Meta carries the columns every content table shares.
type Meta struct {
	ID        string    `json:"id"`
	SortOrder int       `json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (m *Meta) GetMeta() *Meta { return m }

// Entity is satisfied by a pointer to any content type.
type Entity[T any] interface {
	*T
	GetMeta() *Meta
}

type Hero struct {
	Meta
	Headline    string `json:"headline"`
	Subheadline string `json:"subheadline"`
	CTALabel    string `json:"ctaLabel"`
	CTAURL      string `json:"ctaUrl"`
	ImageURL    string `json:"imageUrl"`
}

type Project struct {
	Meta
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	ThumbnailURL string   `json:"thumbnailUrl"`
	LiveURL      string   `json:"liveUrl"`
	RepoURL      string   `json:"repoUrl"`
	Tags         []string `json:"tags"`
	Featured     bool     `json:"featured"`
}

// Experience is a position held. EndDate is nil while the position is current.
type Experience struct {
	Meta
	Company     string     `json:"company"`
	Role        string     `json:"role"`
	Location    string     `json:"location"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Description string     `json:"description"`
}

type Education struct {
	Meta
	Institution string     `json:"institution"`
	Degree      string     `json:"degree"`
	Field       string     `json:"field"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Description string     `json:"description"`
}

type Service struct {
	Meta
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type Testimonial struct {
	Meta
	Author     string `json:"author"`
	AuthorRole string `json:"authorRole"`
	Company    string `json:"company"`
	Quote      string `json:"quote"`
	AvatarURL  string `json:"avatarUrl"`
}

// TechItem is one entry of the tech stack. Proficiency is a percentage.
type TechItem struct {
	Meta
	Name        string `json:"name"`
	Category    string `json:"category"`
	IconURL     string `json:"iconUrl"`
	Proficiency int    `json:"proficiency"`
}

// Site is the public read model rendered on the home page.
type Site struct {
	Heroes       []Hero        `json:"heroes"`
	Projects     []Project     `json:"projects"`
	Experiences  []Experience  `json:"experiences"`
	Educations   []Education   `json:"educations"`
	Services     []Service     `json:"services"`
	Testimonials []Testimonial `json:"testimonials"`
	TechStack    []TechItem    `json:"techStack"`
}
