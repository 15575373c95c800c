package locking_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gchahal1982/G3DAI-sub009/pkg/locking"
)

func TestMemoryLockAcquireRelease(t *testing.T) {
	t.Parallel()

	lock := locking.NewMemoryLock()
	ctx := context.Background()

	release, err := lock.Acquire(ctx, "pl-1")
	require.NoError(t, err)
	require.NotNil(t, release)

	_, err = lock.Acquire(ctx, "pl-1")
	require.ErrorIs(t, err, locking.ErrAlreadyLocked)

	// Different pipeline ids do not contend.
	otherRelease, err := lock.Acquire(ctx, "pl-2")
	require.NoError(t, err)
	otherRelease()

	release()

	release, err = lock.Acquire(ctx, "pl-1")
	require.NoError(t, err)
	release()
}
