package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thicketlabs/thicket/internal/api/forum"
	"github.com/thicketlabs/thicket/internal/cache"
	"github.com/thicketlabs/thicket/internal/db"
	"github.com/thicketlabs/thicket/internal/store"
	"github.com/thicketlabs/thicket/pkg/logging"
)

// Router sets up API routes
type Router struct {
	handler *JSONRPCHandler
	db      *db.DB
	cache   *cache.Cache
	logger  *zap.Logger
}

// NewRouter creates a new API router
func NewRouter(database *db.DB, redisCache *cache.Cache) *Router {
	handler := NewJSONRPCHandler()
	router := &Router{
		handler: handler,
		db:      database,
		cache:   redisCache,
		logger:  logging.GetLogger().With(zap.String("component", "api-router")),
	}

	// Register all API methods
	router.registerMethods()

	return router
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	// JSON-RPC endpoint
	engine.POST("/", r.handler.Handle)
}

// registerMethods registers all API methods
func (r *Router) registerMethods() {
	repo := db.NewRepository(r.db.DB)
	logger := r.logger

	ledger := store.NewVoteLedger(r.db, repo, logger)
	aggregates := store.NewAggregateMaintainer(r.db, logger)
	karma := store.NewKarmaLedger(repo, logger)
	comments := store.NewCommentStore(r.db, repo, logger)
	posts := store.NewPostStore(r.db, repo, logger)
	counters := store.NewCounterMaintainer(r.db, logger)
	users := store.NewUserStore(repo, logger)
	communities := store.NewCommunityStore(r.db, repo, logger)

	// Votes API
	votesAPI := forum.NewVotesAPI(ledger, repo)
	r.handler.RegisterMethod("votes.cast", votesAPI.Cast)
	r.handler.RegisterMethod("votes.remove", votesAPI.Remove)
	r.handler.RegisterMethod("votes.get", votesAPI.Get)
	r.handler.RegisterMethod("votes.list", votesAPI.List)

	// Comments and threads API
	commentsAPI := forum.NewCommentsAPI(comments, r.cache)
	r.handler.RegisterMethod("comments.create", commentsAPI.Create)
	r.handler.RegisterMethod("comments.delete", commentsAPI.Delete)
	r.handler.RegisterMethod("threads.get", commentsAPI.GetThread)
	r.handler.RegisterMethod("threads.get_subtree", commentsAPI.GetSubtree)

	// Posts API
	postsAPI := forum.NewPostsAPI(posts, aggregates, r.cache)
	r.handler.RegisterMethod("posts.create", postsAPI.Create)
	r.handler.RegisterMethod("posts.get", postsAPI.Get)
	r.handler.RegisterMethod("posts.delete", postsAPI.Delete)
	r.handler.RegisterMethod("posts.list_ranked", postsAPI.ListRanked)
	r.handler.RegisterMethod("posts.recompute_hot", postsAPI.RecomputeHot)
	r.handler.RegisterMethod("posts.set_pinned", postsAPI.SetPinned)
	r.handler.RegisterMethod("posts.set_locked", postsAPI.SetLocked)

	// Karma API
	karmaAPI := forum.NewKarmaAPI(karma)
	r.handler.RegisterMethod("karma.get_user", karmaAPI.GetUser)
	r.handler.RegisterMethod("karma.get_log", karmaAPI.GetLog)

	// Communities API
	communitiesAPI := forum.NewCommunitiesAPI(communities, counters)
	r.handler.RegisterMethod("communities.create", communitiesAPI.Create)
	r.handler.RegisterMethod("communities.get", communitiesAPI.Get)
	r.handler.RegisterMethod("communities.list", communitiesAPI.List)
	r.handler.RegisterMethod("communities.join", communitiesAPI.Join)
	r.handler.RegisterMethod("communities.leave", communitiesAPI.Leave)
	r.handler.RegisterMethod("communities.is_member", communitiesAPI.IsMember)

	// Users API
	usersAPI := forum.NewUsersAPI(users)
	r.handler.RegisterMethod("users.create", usersAPI.Create)
	r.handler.RegisterMethod("users.get", usersAPI.Get)

	// Notifications API
	notifyAPI := forum.NewNotifyAPI(repo)
	r.handler.RegisterMethod("notifications.list", notifyAPI.List)
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "OK",
		"service": "thicket-api",
	})
}
