package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"publishingCore/internal/content"
	"publishingCore/internal/models"
	"publishingCore/internal/repository"
)

const (
	minTitleLength       = 10
	maxTitleLength       = 100
	minWordCount         = 300
	maxAvgSentenceLength = 25.0
	resultPassed         = "passed"
	resultFailed         = "failed"
	resultManual         = "manual"
	fullComplianceScore  = 100
)

type GuidelineResult struct {
	GuidelineID string `json:"guidelineId"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Required    bool   `json:"required"`
	Result      string `json:"result"`
	Detail      string `json:"detail"`
}

type ComplianceReport struct {
	ArticleID     string            `json:"articleId"`
	PublicationID string            `json:"publicationId"`
	Score         int               `json:"score"`
	Compliant     bool              `json:"compliant"`
	Results       []GuidelineResult `json:"results"`
}

type ComplianceChecker interface {
	CheckCompliance(ctx context.Context, articleID, publicationID string) (*ComplianceReport, error)
}

type complianceService struct {
	repo *repository.Repository
	log  zerolog.Logger
}

func NewComplianceService(repo *repository.Repository, log zerolog.Logger) ComplianceChecker {
	return &complianceService{
		repo: repo,
		log:  log,
	}
}

func (s *complianceService) CheckCompliance(ctx context.Context, articleID, publicationID string) (*ComplianceReport, error) {
	const op = "compliance.CheckCompliance"

	article, err := s.repo.Article.GetByID(ctx, articleID)
	if err != nil {
		return nil, fail(s.log, op, err)
	}

	guidelines, err := s.repo.Guideline.ListByPublication(ctx, publicationID)
	if err != nil {
		return nil, fail(s.log, op, err)
	}

	report := evaluateGuidelines(article, guidelines)
	report.PublicationID = publicationID
	return report, nil
}

// evaluateGuidelines scores an article. Only required guidelines with an
// automatic check count towards the score.
func evaluateGuidelines(article *models.Article, guidelines []models.PublicationGuideline) *ComplianceReport {
	text := content.PlainText(article.Content)
	words := content.WordCount(text)
	avgSentence := content.AverageSentenceLength(text)
	titleLength := utf8.RuneCountInString(strings.TrimSpace(article.Title))

	report := &ComplianceReport{
		ArticleID: article.ArticleID,
		Results:   make([]GuidelineResult, 0, len(guidelines)),
	}

	checked, passed := 0, 0
	for _, g := range guidelines {
		result := GuidelineResult{
			GuidelineID: g.GuidelineID,
			Title:       g.Title,
			Category:    g.Category,
			Required:    g.IsRequired,
		}

		var ok bool
		switch strings.ToLower(g.Category) {
		case "title":
			ok = titleLength >= minTitleLength && titleLength <= maxTitleLength
			result.Detail = fmt.Sprintf("title has %d characters, expected %d-%d", titleLength, minTitleLength, maxTitleLength)
		case "content", "length":
			ok = words >= minWordCount
			result.Detail = fmt.Sprintf("content has %d words, expected at least %d", words, minWordCount)
		case "style", "readability":
			ok = avgSentence <= maxAvgSentenceLength
			result.Detail = fmt.Sprintf("average sentence has %.1f words, expected at most %.0f", avgSentence, maxAvgSentenceLength)
		default:
			result.Result = resultManual
			result.Detail = "needs editorial review"
			report.Results = append(report.Results, result)
			continue
		}

		result.Result = resultFailed
		if ok {
			result.Result = resultPassed
		}
		if g.IsRequired {
			checked++
			if ok {
				passed++
			}
		}
		report.Results = append(report.Results, result)
	}

	report.Score = fullComplianceScore
	if checked > 0 {
		report.Score = passed * fullComplianceScore / checked
	}
	report.Compliant = passed == checked
	return report
}
