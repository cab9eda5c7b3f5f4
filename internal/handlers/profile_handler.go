package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"socialapp/internal/models"
	"socialapp/internal/repositories"
	"socialapp/internal/services"
)

// ProfileHandler serves profile lookups, edits and the follow graph.
type ProfileHandler struct {
	profiles *services.ProfileService
	ratings  *services.RatingService
	comments *services.CommentService
	follows  *services.FollowService
	validate *validator.Validate
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(
	profiles *services.ProfileService,
	ratings *services.RatingService,
	comments *services.CommentService,
	follows *services.FollowService,
) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		ratings:  ratings,
		comments: comments,
		follows:  follows,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the profile routes under an authenticated router.
func (h *ProfileHandler) RegisterRoutes(router fiber.Router) {
	own := router.Group("/user-profiles")
	own.Get("/me", h.HandleMe)
	own.Put("/update_profile", h.HandleUpdate)
	own.Get("/:username/comments", h.HandleReceivedComments)

	profiles := router.Group("/profiles")
	profiles.Get("/search", h.HandleSearch)
	profiles.Get("/details", h.HandleDetails)
	profiles.Get("/comment_stats", h.HandleCommentStats)
	profiles.Get("/followers", h.HandleFollowers)
	profiles.Get("/following", h.HandleFollowing)
	profiles.Post("/:username/follow", h.HandleToggleFollow)

	router.Get("/user-id", h.HandleUserID)
}

// HandleMe returns the caller's profile.
func (h *ProfileHandler) HandleMe(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	profile, err := h.profiles.Me(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

// UpdateProfileRequest is a partial profile update; absent fields are kept.
type UpdateProfileRequest struct {
	Username    *string `json:"username" validate:"omitempty,min=1,max=20"`
	Email       *string `json:"email" validate:"omitempty,email,max=50"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,phone"`
	FirstName   *string `json:"first_name" validate:"omitempty,max=50"`
	LastName    *string `json:"last_name" validate:"omitempty,max=50"`
	Bio         *string `json:"bio"`
}

// HandleUpdate applies a partial update to the caller's profile.
func (h *ProfileHandler) HandleUpdate(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(err)
	}
	if err := validate(h.validate, req); err != nil {
		return err
	}

	profile, err := h.profiles.Update(c.UserContext(), userID, services.ProfileUpdate{
		Username:    req.Username,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Bio:         req.Bio,
	})
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

// HandleReceivedComments lists the comments left on a profile.
func (h *ProfileHandler) HandleReceivedComments(c *fiber.Ctx) error {
	page, err := pageOf(c, receivedCommentsPageSize)
	if err != nil {
		return err
	}
	views, total, err := h.comments.Received(c.UserContext(), c.Params("username"), page)
	if err != nil {
		return err
	}
	body, err := paginate(c, page, total, views)
	if err != nil {
		return err
	}
	return c.JSON(body)
}

// HandleSearch finds profiles whose username contains ?q=.
func (h *ProfileHandler) HandleSearch(c *fiber.Ctx) error {
	page, err := pageOf(c, profileListPageSize)
	if err != nil {
		return err
	}
	profiles, total, err := h.profiles.Search(c.UserContext(), c.Query("q"), page)
	if err != nil {
		return err
	}
	body, err := paginate(c, page, total, profiles)
	if err != nil {
		return err
	}
	return c.JSON(body)
}

// HandleDetails returns the profile named by ?username=.
func (h *ProfileHandler) HandleDetails(c *fiber.Ctx) error {
	profile, err := h.profiles.Details(c.UserContext(), c.Query("username"))
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

// HandleCommentStats returns the category breakdown of ?username=.
func (h *ProfileHandler) HandleCommentStats(c *fiber.Ctx) error {
	stats, err := h.ratings.Stats(c.UserContext(), c.Query("username"))
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

// HandleFollowers lists the caller's followers.
func (h *ProfileHandler) HandleFollowers(c *fiber.Ctx) error {
	return h.followList(c, h.follows.Followers)
}

// HandleFollowing lists the profiles the caller follows.
func (h *ProfileHandler) HandleFollowing(c *fiber.Ctx) error {
	return h.followList(c, h.follows.Following)
}

type followLister = func(ctx context.Context, userID, username string, page repositories.Page) ([]models.Profile, int64, error)

func (h *ProfileHandler) followList(c *fiber.Ctx, list followLister) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	page, err := pageOf(c, profileListPageSize)
	if err != nil {
		return err
	}
	profiles, total, err := list(c.UserContext(), userID, c.Query("username"), page)
	if err != nil {
		return err
	}
	body, err := paginate(c, page, total, profiles)
	if err != nil {
		return err
	}
	return c.JSON(body)
}

// HandleToggleFollow follows or unfollows the profile in the path.
func (h *ProfileHandler) HandleToggleFollow(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	username := c.Params("username")
	following, err := h.follows.Toggle(c.UserContext(), userID, username)
	if err != nil {
		return err
	}

	message := "You have unfollowed " + username + "."
	if following {
		message = "You are now following " + username + "."
	}
	return c.JSON(fiber.Map{"message": message, "following": following})
}

// HandleUserID returns the id of the caller's profile.
func (h *ProfileHandler) HandleUserID(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := h.profiles.ProfileID(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(id)
}
