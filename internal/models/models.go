package models

import (
	"time"

	"github.com/lib/pq"
)

type ArticleStatus string

const (
	ArticleDraft     ArticleStatus = "draft"
	ArticlePublished ArticleStatus = "published"
	ArticleArchived  ArticleStatus = "archived"
)

type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationFlagged  ModerationStatus = "flagged"
	ModerationRemoved  ModerationStatus = "removed"
)

func (s ModerationStatus) Valid() bool {
	switch s {
	case ModerationPending, ModerationApproved, ModerationFlagged, ModerationRemoved:
		return true
	}
	return false
}

type Role string

const (
	RoleWriter Role = "writer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

// Level orders roles: writer < editor < admin. Unknown roles are 0.
func (r Role) Level() int {
	switch r {
	case RoleWriter:
		return 1
	case RoleEditor:
		return 2
	case RoleAdmin:
		return 3
	}
	return 0
}

type SubmissionStatus string

const (
	SubmissionPending           SubmissionStatus = "pending"
	SubmissionUnderReview       SubmissionStatus = "under_review"
	SubmissionApproved          SubmissionStatus = "approved"
	SubmissionRejected          SubmissionStatus = "rejected"
	SubmissionRevisionRequested SubmissionStatus = "revision_requested"
)

// Active submissions block a new submission of the same article to the same publication.
func (s SubmissionStatus) Active() bool {
	return s == SubmissionPending || s == SubmissionUnderReview || s == SubmissionApproved
}

type NotificationType string

const (
	NotificationFollow             NotificationType = "follow"
	NotificationClap               NotificationType = "clap"
	NotificationComment            NotificationType = "comment"
	NotificationPublicationInvite  NotificationType = "publication_invite"
	NotificationNewArticle         NotificationType = "new_article"
	NotificationSubmissionReceived NotificationType = "submission_received"
	NotificationSubmissionApproved NotificationType = "submission_approved"
	NotificationSubmissionRejected NotificationType = "submission_rejected"
	NotificationRevisionRequested  NotificationType = "revision_requested"
)

type User struct {
	UserID                  string    `json:"userId" db:"user_id"`
	Username                string    `json:"username" db:"username"`
	DisplayName             string    `json:"displayName" db:"display_name"`
	NotificationPreferences *string   `json:"-" db:"notification_preferences"`
	CreatedAt               time.Time `json:"createdAt" db:"created_at"`
}

type Article struct {
	ArticleID        string           `json:"articleId" db:"article_id"`
	AuthorID         string           `json:"authorId" db:"author_id"`
	PublicationID    *string          `json:"publicationId" db:"publication_id"`
	SubmissionID     *string          `json:"submissionId" db:"submission_id"`
	Title            string           `json:"title" db:"title"`
	Subtitle         string           `json:"subtitle" db:"subtitle"`
	Content          string           `json:"content" db:"content"`
	FeaturedImageURL string           `json:"featuredImageUrl" db:"featured_image_url"`
	Slug             string           `json:"slug" db:"slug"`
	Status           ArticleStatus    `json:"status" db:"status"`
	PublishedAt      *time.Time       `json:"publishedAt" db:"published_at"`
	ReadingTime      int              `json:"readingTime" db:"reading_time"`
	RevisionCount    int              `json:"revisionCount" db:"revision_count"`
	LastEditedBy     *string          `json:"lastEditedBy" db:"last_edited_by"`
	LastEditedAt     *time.Time       `json:"lastEditedAt" db:"last_edited_at"`
	ModerationStatus ModerationStatus `json:"moderationStatus" db:"moderation_status"`
	CreatedAt        time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time        `json:"updatedAt" db:"updated_at"`
	Tags             pq.StringArray   `json:"tags" db:"tags"`
}

type ArticleRevision struct {
	RevisionID       string         `json:"revisionId" db:"revision_id"`
	ArticleID        string         `json:"articleId" db:"article_id"`
	RevisionNumber   int            `json:"revisionNumber" db:"revision_number"`
	Title            string         `json:"title" db:"title"`
	Subtitle         string         `json:"subtitle" db:"subtitle"`
	Content          string         `json:"content" db:"content"`
	FeaturedImageURL string         `json:"featuredImageUrl" db:"featured_image_url"`
	Tags             pq.StringArray `json:"tags" db:"tags"`
	CreatedBy        string         `json:"createdBy" db:"created_by"`
	ChangeSummary    *string        `json:"changeSummary" db:"change_summary"`
	IsMajorRevision  bool           `json:"isMajorRevision" db:"is_major_revision"`
	CreatedAt        time.Time      `json:"createdAt" db:"created_at"`
}

type RevisionStats struct {
	TotalRevisions int        `json:"totalRevisions" db:"total_revisions"`
	MajorRevisions int        `json:"majorRevisions" db:"major_revisions"`
	Contributors   int        `json:"contributors" db:"contributors"`
	FirstRevision  *time.Time `json:"firstRevision" db:"first_revision"`
	LastRevision   *time.Time `json:"lastRevision" db:"last_revision"`
}

type Contributor struct {
	UserID            string    `json:"userId" db:"user_id"`
	Username          string    `json:"username" db:"username"`
	RevisionCount     int       `json:"revisionCount" db:"revision_count"`
	FirstContribution time.Time `json:"firstContribution" db:"first_contribution"`
	LastContribution  time.Time `json:"lastContribution" db:"last_contribution"`
}

type Publication struct {
	PublicationID string    `json:"publicationId" db:"publication_id"`
	OwnerID       string    `json:"ownerId" db:"owner_id"`
	Name          string    `json:"name" db:"name"`
	Description   string    `json:"description" db:"description"`
	LogoURL       string    `json:"logoUrl" db:"logo_url"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

type PublicationMember struct {
	PublicationID string    `json:"publicationId" db:"publication_id"`
	UserID        string    `json:"userId" db:"user_id"`
	Role          Role      `json:"role" db:"role"`
	JoinedAt      time.Time `json:"joinedAt" db:"joined_at"`
}

type ArticleSubmission struct {
	SubmissionID  string           `json:"submissionId" db:"submission_id"`
	ArticleID     string           `json:"articleId" db:"article_id"`
	PublicationID string           `json:"publicationId" db:"publication_id"`
	SubmittedBy   string           `json:"submittedBy" db:"submitted_by"`
	Status        SubmissionStatus `json:"status" db:"status"`
	ReviewedBy    *string          `json:"reviewedBy" db:"reviewed_by"`
	ReviewedAt    *time.Time       `json:"reviewedAt" db:"reviewed_at"`
	ReviewNotes   *string          `json:"reviewNotes" db:"review_notes"`
	RevisionNotes *string          `json:"revisionNotes" db:"revision_notes"`
	SubmittedAt   time.Time        `json:"submittedAt" db:"submitted_at"`
	UpdatedAt     time.Time        `json:"updatedAt" db:"updated_at"`
}

type PublicationGuideline struct {
	GuidelineID   string `json:"guidelineId" db:"guideline_id"`
	PublicationID string `json:"publicationId" db:"publication_id"`
	Title         string `json:"title" db:"title"`
	Content       string `json:"content" db:"content"`
	Category      string `json:"category" db:"category"`
	IsRequired    bool   `json:"isRequired" db:"is_required"`
	DisplayOrder  int    `json:"displayOrder" db:"display_order"`
}

type Notification struct {
	NotificationID string           `json:"notificationId" db:"notification_id"`
	UserID         string           `json:"userId" db:"user_id"`
	ActorID        *string          `json:"actorId" db:"actor_id"`
	Type           NotificationType `json:"type" db:"type"`
	Content        string           `json:"content" db:"content"`
	RelatedID      *string          `json:"relatedId" db:"related_id"`
	IsRead         bool             `json:"isRead" db:"is_read"`
	CreatedAt      time.Time        `json:"createdAt" db:"created_at"`
}

// Recipient is a user about to receive a notification together with their preference blob.
type Recipient struct {
	UserID                  string  `db:"user_id"`
	NotificationPreferences *string `db:"notification_preferences"`
}
