package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gamification-engine/internal/app"
	"gamification-engine/internal/domain"
	"gamification-engine/internal/infra/memory"
)

type testEnv struct {
	server      *httptest.Server
	leaderboard *app.LeaderboardService
}

func newTestEnv(t *testing.T, bank ...domain.Question) *testEnv {
	t.Helper()
	catalogStore := memory.NewCatalogStore()
	gameLinks := memory.NewLinkStore()
	userLinks := memory.NewLinkStore()

	catalog := app.NewCatalogService(catalogStore, gameLinks, userLinks)
	mappings := app.NewMappingService(gameLinks, userLinks, catalogStore)
	leaderboard := app.NewLeaderboardService(memory.NewLeaderboardStore())
	rewards := app.NewRewardService(memory.NewRewardStore(), leaderboard)
	sessions := app.NewSessionService(
		memory.NewSessionStore(), nil,
		memory.NewQuestionSource(map[domain.GameType][]domain.Question{domain.GameTypeBooks: bank}),
		catalogStore, mappings, leaderboard, time.Minute,
	)

	handler := NewHandler(sessions, mappings, leaderboard, rewards, catalog)
	server := httptest.NewServer(handler.Routes())
	t.Cleanup(server.Close)
	return &testEnv{server: server, leaderboard: leaderboard}
}

func (e *testEnv) do(t *testing.T, method, path string, body, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := e.server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func restQuestion(id string) domain.Question {
	return domain.Question{
		ID:     id,
		Prompt: "prompt " + id,
		Options: []domain.Option{
			{ID: "o-right", Text: "right", Correct: true},
			{ID: "o-wrong", Text: "wrong"},
		},
	}
}

func (e *testEnv) seedLinkedGame(t *testing.T) string {
	t.Helper()
	if code := e.do(t, http.MethodPut, "/catalog/games", domain.ExternalGame{ID: "ext-game", Name: "Book Quiz", Active: true}, nil); code != http.StatusNoContent {
		t.Fatalf("sync game: status %d", code)
	}
	if code := e.do(t, http.MethodPut, "/catalog/users", domain.ExternalUser{ID: "ext-user", Username: "reader"}, nil); code != http.StatusNoContent {
		t.Fatalf("sync user: status %d", code)
	}
	var game domain.InternalGame
	payload := domain.InternalGame{Name: "Guess the Book", Type: domain.GameTypeBooks, QuestionCount: 2, TimeLimitSec: 10, BasePoints: 10}
	if code := e.do(t, http.MethodPost, "/games", payload, &game); code != http.StatusCreated {
		t.Fatalf("create game: status %d", code)
	}
	if code := e.do(t, http.MethodPost, "/mappings/games/link", map[string]string{"externalId": "ext-game", "internalId": game.ID}, nil); code != http.StatusNoContent {
		t.Fatalf("link game: status %d", code)
	}
	return game.ID
}

func TestQuizFlowOverREST(t *testing.T) {
	env := newTestEnv(t, restQuestion("q1"), restQuestion("q2"))
	gameID := env.seedLinkedGame(t)

	var created createSessionResponse
	if code := env.do(t, http.MethodPost, "/sessions", map[string]string{"externalUserId": "ext-user", "externalGameId": "ext-game"}, &created); code != http.StatusCreated {
		t.Fatalf("create session: status %d", code)
	}

	total := 0
	for i := 0; i < 2; i++ {
		var question questionResponse
		if code := env.do(t, http.MethodGet, "/sessions/"+created.SessionID+"/question", nil, &question); code != http.StatusOK {
			t.Fatalf("next question: status %d", code)
		}
		if len(question.Options) != 2 {
			t.Fatalf("question options = %+v, want two", question.Options)
		}

		var result app.AnswerResult
		body := map[string]any{"questionId": question.QuestionID, "optionId": "o-right", "elapsedSeconds": 0}
		if code := env.do(t, http.MethodPost, "/sessions/"+created.SessionID+"/answer", body, &result); code != http.StatusOK {
			t.Fatalf("submit answer: status %d", code)
		}
		if !result.Correct || result.Points != 10 {
			t.Fatalf("answer result = %+v, want 10 points", result)
		}
		total = result.TotalScore
		if wantDone := i == 1; result.Completed != wantDone {
			t.Fatalf("completed = %v after answer %d", result.Completed, i+1)
		}
	}
	if total != 20 {
		t.Fatalf("total score = %d, want 20", total)
	}

	var board domain.Leaderboard
	if code := env.do(t, http.MethodGet, "/leaderboard?gameId="+gameID+"&period=weekly", nil, &board); code != http.StatusOK {
		t.Fatalf("leaderboard: status %d", code)
	}
	if len(board.Standings) != 1 || board.Standings[0].Points != 20 || board.Standings[0].Rank != 1 {
		t.Fatalf("standings = %+v, want the completed session on top", board.Standings)
	}

	var reward domain.Reward
	if code := env.do(t, http.MethodPost, "/rewards", domain.Reward{GameID: gameID, Name: "voucher", RequiredRank: 1, Value: 25, Available: 3}, &reward); code != http.StatusCreated {
		t.Fatalf("create reward: status %d", code)
	}
	var claim claimResponse
	claimBody := map[string]string{"userId": "ext-user", "gameId": gameID, "period": "weekly"}
	if code := env.do(t, http.MethodPost, "/rewards/claim", claimBody, &claim); code != http.StatusOK {
		t.Fatalf("claim: status %d", code)
	}
	if claim.Reward.ID != reward.ID {
		t.Fatalf("claimed reward %s, want %s", claim.Reward.ID, reward.ID)
	}

	var repeat claimResponse
	if code := env.do(t, http.MethodPost, "/rewards/claim", claimBody, &repeat); code != http.StatusOK {
		t.Fatalf("repeat claim: status %d", code)
	}
	if repeat.ClaimID != claim.ClaimID {
		t.Fatalf("repeat claim id %s, want original %s", repeat.ClaimID, claim.ClaimID)
	}
}

func TestQuestionResponseHidesCorrectFlag(t *testing.T) {
	env := newTestEnv(t, restQuestion("q1"))
	env.seedLinkedGame(t)

	var created createSessionResponse
	env.do(t, http.MethodPost, "/sessions", map[string]string{"externalUserId": "ext-user", "externalGameId": "ext-game"}, &created)

	resp, err := env.server.Client().Get(env.server.URL + "/sessions/" + created.SessionID + "/question")
	if err != nil {
		t.Fatalf("next question: %v", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if strings.Contains(string(raw), "correct") {
		t.Fatalf("question payload leaks the answer: %s", raw)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	env := newTestEnv(t, restQuestion("q1"))
	gameID := env.seedLinkedGame(t)

	// Unknown identities are 404s.
	if code := env.do(t, http.MethodPost, "/sessions", map[string]string{"externalUserId": "ghost", "externalGameId": "ext-game"}, nil); code != http.StatusNotFound {
		t.Fatalf("unknown user: status %d, want 404", code)
	}
	// Breaking link uniqueness is a 409.
	if code := env.do(t, http.MethodPut, "/catalog/games", domain.ExternalGame{ID: "ext-game-2", Name: "Other", Active: true}, nil); code != http.StatusNoContent {
		t.Fatalf("sync second game failed")
	}
	if code := env.do(t, http.MethodPost, "/mappings/games/link", map[string]string{"externalId": "ext-game-2", "internalId": gameID}, nil); code != http.StatusConflict {
		t.Fatalf("double link: status %d, want 409", code)
	}
	// Missing request fields are 400s.
	if code := env.do(t, http.MethodPost, "/sessions", map[string]string{}, nil); code != http.StatusBadRequest {
		t.Fatalf("empty session request: status %d, want 400", code)
	}
	// Claims with nothing to give are 404s.
	claimBody := map[string]string{"userId": "ext-user", "gameId": gameID, "period": "weekly"}
	if code := env.do(t, http.MethodPost, "/rewards/claim", claimBody, nil); code != http.StatusNotFound {
		t.Fatalf("claim without rank: status %d, want 404", code)
	}
}

func TestAvailableGamesEndpoint(t *testing.T) {
	env := newTestEnv(t, restQuestion("q1"))
	env.seedLinkedGame(t)

	if code := env.do(t, http.MethodPut, "/catalog/games", domain.ExternalGame{ID: "ext-free", Name: "Unlinked", Active: true}, nil); code != http.StatusNoContent {
		t.Fatalf("sync game failed")
	}

	var available availableGamesResponse
	if code := env.do(t, http.MethodGet, "/mappings/games/available", nil, &available); code != http.StatusOK {
		t.Fatalf("available games: status %d", code)
	}
	if len(available.External) != 1 || available.External[0].ID != "ext-free" {
		t.Fatalf("free external = %+v, want only ext-free", available.External)
	}
	if len(available.Internal) != 0 {
		t.Fatalf("free internal = %+v, want none", available.Internal)
	}
}

func TestUnlinkThenRelinkOverREST(t *testing.T) {
	env := newTestEnv(t, restQuestion("q1"))
	gameID := env.seedLinkedGame(t)

	if code := env.do(t, http.MethodPost, "/mappings/games/unlink", map[string]string{"externalId": "ext-game"}, nil); code != http.StatusNoContent {
		t.Fatalf("unlink: status %d", code)
	}
	if code := env.do(t, http.MethodPost, "/mappings/games/link", map[string]string{"externalId": "ext-game", "internalId": gameID}, nil); code != http.StatusNoContent {
		t.Fatalf("relink: status %d", code)
	}
}
