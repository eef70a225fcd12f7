package pugintegrationtests

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/Black-And-White-Club/pug-bot/app/modules/pug"
	"github.com/Black-And-White-Club/pug-bot/app/observability"
	"github.com/Black-And-White-Club/pug-bot/integration_tests/testutils"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

var (
	testEnv     *testutils.TestEnvironment
	testEnvOnce sync.Once
	testEnvErr  error
)

// GetTestEnv starts the shared containers on first use.
func GetTestEnv(t *testing.T) *testutils.TestEnvironment {
	t.Helper()
	testutils.SkipIfShort(t)

	testEnvOnce.Do(func() {
		log.Println("Initializing pug integration test environment...")
		env, err := testutils.NewTestEnvironment(context.Background())
		if err != nil {
			testEnvErr = err
			log.Printf("Failed to set up test environment: %v", err)
			return
		}
		testEnv = env
	})

	if testEnvErr != nil {
		t.Fatalf("Pug test environment initialization failed: %v", testEnvErr)
	}
	return testEnv
}

// ModuleTestDeps is a running pug module bound to the shared containers.
type ModuleTestDeps struct {
	*testutils.TestEnvironment
	Module *pug.Module
	Router *message.Router
}

// SetupPugModule starts a pug module for a four player, two captain game
// and stops it when the test ends.
func SetupPugModule(t *testing.T) ModuleTestDeps {
	t.Helper()

	env := GetTestEnv(t)

	resetCtx, resetCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer resetCancel()
	if err := env.Reset(resetCtx); err != nil {
		t.Fatalf("Failed to reset environment: %v", err)
	}

	obs, err := observability.Init(env.Ctx, observability.Config{Output: io.Discard})
	if err != nil {
		t.Fatalf("Failed to init observability: %v", err)
	}

	router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(env.Logger))
	if err != nil {
		t.Fatalf("Failed to create router: %v", err)
	}
	router.AddMiddleware(middleware.CorrelationID, middleware.Recoverer)

	cfg := *env.Config
	cfg.PUG.QueueSize = 4
	cfg.PUG.NumCaptains = 2
	cfg.PUG.TeamSize = 2

	routerCtx, cancel := context.WithCancel(env.Ctx)
	module, err := pug.NewPugModule(env.Ctx, &cfg, obs, env.EventBus, router, routerCtx, env.DB)
	if err != nil {
		cancel()
		t.Fatalf("Failed to create pug module: %v", err)
	}

	t.Cleanup(func() {
		cancel()
		if err := module.Close(); err != nil {
			t.Logf("Error closing pug module: %v", err)
		}
	})

	return ModuleTestDeps{TestEnvironment: env, Module: module, Router: router}
}

// StartRouter runs the router until the test ends.
func (d ModuleTestDeps) StartRouter(t *testing.T) {
	t.Helper()

	go func() {
		if err := d.Router.Run(d.Ctx); err != nil {
			log.Printf("Router stopped: %v", err)
		}
	}()

	select {
	case <-d.Router.Running():
	case <-time.After(15 * time.Second):
		t.Fatal("router did not start")
	}
}

// Receive waits for the next message on ch and acks it.
func Receive(t *testing.T, ch <-chan *message.Message, timeout time.Duration) *message.Message {
	t.Helper()

	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatal("subscription closed")
		}
		msg.Ack()
		return msg
	case <-time.After(timeout):
		t.Fatal("timed out waiting for message")
		return nil
	}
}
