package mongostore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"estategraph/server/internal/store"
	"estategraph/server/internal/store/storetest"
)

// TestContract needs a reachable MongoDB, e.g.
// MONGODB_TEST_URI=mongodb://localhost:27017 go test ./internal/store/mongostore/
func TestContract(t *testing.T) {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	n := 0
	storetest.Run(t, func(t *testing.T) store.Store {
		n++
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		dbName := fmt.Sprintf("estategraph_test_%d_%d", time.Now().UnixNano(), n)
		s, err := Connect(ctx, uri, dbName, logrus.New())
		require.NoError(t, err)

		t.Cleanup(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = s.client.Database(dbName).Drop(ctx)
			_ = s.Close(ctx)
		})
		return s
	})
}

func TestConnectUnreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for server selection timeout")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := Connect(ctx, "mongodb://127.0.0.1:1/?connectTimeoutMS=200", "x", logrus.New())
	require.Error(t, err)
}
