package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AlexBaum-ai/NEURM-sub006/internal/config"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/database"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/middleware"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const handlerTestSecret = "handler-test-secret-with-32-chars!!"

var handlerDBSeq atomic.Int64

type testAPI struct {
	t   *testing.T
	db  *gorm.DB
	app *fiber.App
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	dsn := fmt.Sprintf("file:api_%d?mode=memory&cache=shared", handlerDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		JWTSecret:      handlerTestSecret,
		Env:            "test",
		AllowedOrigins: "http://localhost:5173",
		VoteDailyLimit: 50,
	}
	s, err := NewServer(cfg, db, rdb)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return &testAPI{t: t, db: db, app: s.App()}
}

func (a *testAPI) user(name, role string) uint {
	a.t.Helper()
	u := &models.User{Username: name, Role: role}
	require.NoError(a.t, a.db.Create(u).Error)
	return u.ID
}

func (a *testAPI) token(userID uint) string {
	a.t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": middleware.TokenIssuer,
		"aud": middleware.TokenAudience,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(handlerTestSecret))
	require.NoError(a.t, err)
	return signed
}

// do sends a request as userID (0 for anonymous) and decodes the JSON body into out when given.
func (a *testAPI) do(method, target string, userID uint, body any, out any) int {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != 0 {
		req.Header.Set("Authorization", "Bearer "+a.token(userID))
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestAPI_QuestionLifecycle(t *testing.T) {
	api := newTestAPI(t)
	asker := api.user("asker", models.RoleMember)
	helper := api.user("helper", models.RoleMember)

	var topic models.Topic
	status := api.do(http.MethodPost, "/api/topics", asker, CreateTopicRequest{
		CategoryID: 1,
		Title:      "How do I cancel a context?",
		Content:    "Details inside",
		Type:       models.TopicTypeQuestion,
		Tags:       []string{"Go", "context"},
	}, &topic)
	require.Equal(t, http.StatusCreated, status)
	require.NotZero(t, topic.ID)

	var queue models.UnansweredPage
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/topics/unanswered?tag=go", 0, nil, &queue))
	require.Len(t, queue.Items, 1)
	assert.Equal(t, topic.ID, queue.Items[0].ID)

	var reply models.Reply
	status = api.do(http.MethodPost, fmt.Sprintf("/api/topics/%d/replies", topic.ID), helper,
		CreateReplyRequest{Content: "Call the cancel func."}, &reply)
	require.Equal(t, http.StatusCreated, status)

	var vote models.VoteResult
	status = api.do(http.MethodPost, "/api/votes", asker, CastVoteRequest{
		VotableType: string(models.VotableReply),
		VotableID:   reply.ID,
		Direction:   string(models.DirectionUp),
	}, &vote)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, vote.Score)
	assert.Equal(t, 1, vote.UserVote)
	assert.Equal(t, 49, vote.QuotaRemaining)

	var state map[string]any
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, fmt.Sprintf("/api/votes/reply/%d", reply.ID), asker, nil, &state))
	assert.Equal(t, float64(1), state["user_vote"])

	var accepted models.Topic
	status = api.do(http.MethodPost, fmt.Sprintf("/api/topics/%d/accept/%d", topic.ID, reply.ID), asker, nil, &accepted)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, accepted.AcceptedReplyID)
	assert.Equal(t, reply.ID, *accepted.AcceptedReplyID)

	queue = models.UnansweredPage{}
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/topics/unanswered", 0, nil, &queue))
	assert.Empty(t, queue.Items)

	var rep models.Reputation
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, fmt.Sprintf("/api/users/%d/reputation", helper), 0, nil, &rep))
	assert.Equal(t, models.PointsReplyCreated+models.PointsUpvoteReceived+models.PointsAnswerAccepted, rep.Total)
	assert.Equal(t, models.PointsAnswerAccepted, rep.Breakdown.Accepted)

	var history struct {
		Events []models.ReputationEvent `json:"events"`
		Total  int64                    `json:"total"`
	}
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, fmt.Sprintf("/api/users/%d/reputation/events?limit=2", helper), 0, nil, &history))
	assert.Equal(t, int64(3), history.Total)
	assert.Len(t, history.Events, 2)
}

func TestAPI_VoteErrors(t *testing.T) {
	api := newTestAPI(t)
	author := api.user("author", models.RoleMember)
	voter := api.user("voter", models.RoleMember)

	var topic models.Topic
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/topics", author, CreateTopicRequest{
		CategoryID: 1, Title: "Discussion", Content: "body",
	}, &topic))

	cast := func(userID uint, direction string) (int, models.ErrorResponse) {
		var body models.ErrorResponse
		status := api.do(http.MethodPost, "/api/votes", userID, CastVoteRequest{
			VotableType: string(models.VotableTopic),
			VotableID:   topic.ID,
			Direction:   direction,
		}, &body)
		return status, body
	}

	t.Run("anonymous", func(t *testing.T) {
		status := api.do(http.MethodPost, "/api/votes", 0, CastVoteRequest{}, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("self vote", func(t *testing.T) {
		status, body := cast(author, "up")
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, models.CodeForbidden, body.Code)
	})

	t.Run("downvote below threshold", func(t *testing.T) {
		status, body := cast(voter, "down")
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, models.CodeForbidden, body.Code)
	})

	t.Run("bad direction", func(t *testing.T) {
		status, body := cast(voter, "sideways")
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, models.CodeValidation, body.Code)
	})

	t.Run("missing target", func(t *testing.T) {
		var body models.ErrorResponse
		status := api.do(http.MethodPost, "/api/votes", voter, CastVoteRequest{
			VotableType: string(models.VotableReply), VotableID: 9999, Direction: "up",
		}, &body)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/votes", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+api.token(voter))
		resp, err := api.app.Test(req, -1)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestAPI_ReplyEditingAndDeletion(t *testing.T) {
	api := newTestAPI(t)
	author := api.user("author", models.RoleMember)
	other := api.user("other", models.RoleMember)
	mod := api.user("mod", models.RoleModerator)

	var topic models.Topic
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/topics", author, CreateTopicRequest{
		CategoryID: 2, Title: "Thread", Content: "body",
	}, &topic))

	var root models.Reply
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, fmt.Sprintf("/api/topics/%d/replies", topic.ID), author,
		CreateReplyRequest{Content: "root"}, &root))
	var child models.Reply
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, fmt.Sprintf("/api/topics/%d/replies", topic.ID), other,
		CreateReplyRequest{Content: "child", ParentReplyID: &root.ID}, &child))
	assert.Equal(t, 1, child.Depth)

	var edited models.Reply
	require.Equal(t, http.StatusOK, api.do(http.MethodPut, fmt.Sprintf("/api/replies/%d", root.ID), author,
		UpdateReplyRequest{Content: "root, edited"}, &edited))
	assert.Equal(t, "root, edited", edited.Content)

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPut, fmt.Sprintf("/api/replies/%d", root.ID), other,
		UpdateReplyRequest{Content: "hijack"}, nil))

	var edits []models.ReplyEdit
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, fmt.Sprintf("/api/replies/%d/edits", root.ID), author, nil, &edits))
	assert.Len(t, edits, 1)

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodDelete, fmt.Sprintf("/api/replies/%d", root.ID), other, nil, nil))
	assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, fmt.Sprintf("/api/replies/%d", root.ID), mod, nil, nil))

	var tree []*models.ReplyNode
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, fmt.Sprintf("/api/topics/%d/replies", topic.ID), 0, nil, &tree))
	require.Len(t, tree, 1)
	assert.True(t, tree[0].IsDeleted)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, child.ID, tree[0].Children[0].ID)
}

func TestAPI_TopicModeration(t *testing.T) {
	api := newTestAPI(t)
	author := api.user("author", models.RoleMember)
	mod := api.user("mod", models.RoleModerator)

	var topic models.Topic
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/topics", author, CreateTopicRequest{
		CategoryID: 1, Title: "Lock me", Content: "body",
	}, &topic))
	lockPath := fmt.Sprintf("/api/topics/%d/lock", topic.ID)

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPost, lockPath, author, nil, nil))
	assert.Equal(t, http.StatusNoContent, api.do(http.MethodPost, lockPath, mod, nil, nil))

	var errBody models.ErrorResponse
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPost, fmt.Sprintf("/api/topics/%d/replies", topic.ID), author,
		CreateReplyRequest{Content: "too late"}, &errBody))

	var fetched models.Topic
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, fmt.Sprintf("/api/topics/%d", topic.ID), 0, nil, &fetched))
	assert.True(t, fetched.IsLocked)

	assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, lockPath, mod, nil, nil))

	statusPath := fmt.Sprintf("/api/topics/%d/status", topic.ID)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPut, statusPath, author, SetTopicStatusRequest{Status: "frozen"}, nil))
	assert.Equal(t, http.StatusNoContent, api.do(http.MethodPut, statusPath, author, SetTopicStatusRequest{Status: models.TopicStatusResolved}, nil))

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/topics/424242", 0, nil, nil))
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/users/999999/reputation", 0, nil, nil))
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/users/999999/reputation/events", 0, nil, nil))
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/topics/unanswered?from=not-a-date", 0, nil, nil))
}

func TestAPI_HealthAndFlags(t *testing.T) {
	api := newTestAPI(t)
	viewer := api.user("viewer", models.RoleMember)

	var health map[string]any
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/health/ready", 0, nil, &health))
	assert.Equal(t, "healthy", health["status"])

	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/health/live", 0, nil, nil))

	var flags FeatureFlagsResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/feature-flags", viewer, nil, &flags))
	assert.Equal(t, "on", flags.Raw["vote_events"])
	assert.True(t, flags.Evaluated["reply_edit_history"])
	assert.False(t, flags.Evaluated["view_counting"])

	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/feature-flags", 0, nil, nil))
}
