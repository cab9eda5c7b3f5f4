package handlers

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"socialapp/internal/apperr"
	"socialapp/internal/models"
	"socialapp/internal/repositories"
	"socialapp/internal/services"
)

// CommentHandler handles rating comments and their reactions.
type CommentHandler struct {
	ratings  *services.RatingService
	comments *services.CommentService
	validate *validator.Validate
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(ratings *services.RatingService, comments *services.CommentService) *CommentHandler {
	return &CommentHandler{ratings: ratings, comments: comments, validate: newValidator()}
}

// RegisterRoutes registers the comment routes under an authenticated router.
func (h *CommentHandler) RegisterRoutes(router fiber.Router) {
	commentRoutes := router.Group("/comments")
	commentRoutes.Post("/create", h.HandleCreate)
	commentRoutes.Get("/own_comments", h.HandleOwnComments)
	commentRoutes.Get("/:id/likes_dislikes", h.HandleReactions)
	commentRoutes.Post("/:id/like", h.HandleToggle(repositories.ReactionLike))
	commentRoutes.Post("/:id/dislike", h.HandleToggle(repositories.ReactionDislike))

	router.Get("/latest-comments", h.HandleLatest)
}

// CreateCommentRequest is the body of a rating submission. Category scores
// are keyed by category id.
type CreateCommentRequest struct {
	ProfileCommentedOn string         `json:"profile_commented_on" validate:"required"`
	Content            string         `json:"content" validate:"required,max=255"`
	CategoryScores     map[string]int `json:"category_scores" validate:"required"`
	IsAnonymous        *bool          `json:"is_anonymous"`
}

// HandleCreate submits a rating comment.
func (h *CommentHandler) HandleCreate(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(err)
	}
	if err := validate(h.validate, req); err != nil {
		return err
	}
	scores, err := parseScores(req.CategoryScores)
	if err != nil {
		return err
	}

	view, err := h.ratings.Submit(c.UserContext(), userID, services.RatingInput{
		TargetUsername: req.ProfileCommentedOn,
		Content:        req.Content,
		Scores:         scores,
		IsAnonymous:    req.IsAnonymous,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

func parseScores(raw map[string]int) (models.CategoryScores, error) {
	scores := make(models.CategoryScores, len(raw))
	for key, score := range raw {
		id, err := strconv.ParseUint(key, 10, 32)
		if err != nil {
			return nil, apperr.ValidationFields("invalid category scores", map[string]string{key: "category id must be a number"})
		}
		scores[uint(id)] = score
	}
	return scores, nil
}

// HandleOwnComments lists the comments the caller wrote.
func (h *CommentHandler) HandleOwnComments(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	page, err := pageOf(c, ownCommentsPageSize)
	if err != nil {
		return err
	}
	views, total, err := h.comments.Own(c.UserContext(), userID, page)
	if err != nil {
		return err
	}
	body, err := paginate(c, page, total, views)
	if err != nil {
		return err
	}
	return c.JSON(body)
}

// HandleLatest lists the newest comments on followed profiles.
func (h *CommentHandler) HandleLatest(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	page, err := pageOf(c, latestCommentsPageSize)
	if err != nil {
		return err
	}
	views, total, err := h.comments.Latest(c.UserContext(), userID, page)
	if err != nil {
		return err
	}
	body, err := paginate(c, page, total, views)
	if err != nil {
		return err
	}
	return c.JSON(body)
}

// HandleReactions returns who liked and disliked a comment. With ?ids=a,b
// it returns the summaries of every listed comment instead.
func (h *CommentHandler) HandleReactions(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	if raw := c.Query("ids"); raw != "" {
		var ids []string
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		summaries, err := h.comments.BatchReactions(c.UserContext(), userID, ids)
		if err != nil {
			return err
		}
		return c.JSON(summaries)
	}

	summary, err := h.comments.Reactions(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

// HandleToggle returns a handler flipping the caller's reaction.
func (h *CommentHandler) HandleToggle(reaction repositories.Reaction) fiber.Handler {
	added, removed := "Like added successfully.", "Like removed successfully."
	if reaction == repositories.ReactionDislike {
		added, removed = "Dislike added successfully.", "Dislike removed successfully."
	}
	return func(c *fiber.Ctx) error {
		userID, err := currentUserID(c)
		if err != nil {
			return err
		}
		set, err := h.comments.Toggle(c.UserContext(), userID, c.Params("id"), reaction)
		if err != nil {
			return err
		}
		if set {
			return c.JSON(fiber.Map{"message": added})
		}
		return c.JSON(fiber.Map{"message": removed})
	}
}
