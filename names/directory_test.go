package names_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"request-rate-service/names"
)

func TestResolve(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	directory := names.NewDirectory()
	require.EqualValues("1.1.1.1", directory.Resolve("1.1.1.1"))

	require.True(directory.Upsert("1.1.1.1", "Alice"))
	require.EqualValues("Alice", directory.Resolve("1.1.1.1"))
	require.EqualValues("2.2.2.2", directory.Resolve("2.2.2.2"))

	require.True(directory.Upsert("1.1.1.1", "Bob"))
	require.EqualValues("Bob", directory.Resolve("1.1.1.1"))
}

func TestBlankNameIgnored(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	directory := names.NewDirectory()
	require.True(directory.Upsert("1.1.1.1", "Alice"))
	require.False(directory.Upsert("1.1.1.1", ""))
	require.False(directory.Upsert("1.1.1.1", "   "))

	name, ok := directory.Lookup("1.1.1.1")
	require.True(ok)
	require.EqualValues("Alice", name)
	require.EqualValues(1, directory.Len())
}

func TestConcurrentUpsert(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	directory := names.NewDirectory()
	wg := sync.WaitGroup{}
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			address := fmt.Sprintf("10.0.0.%d", i%4)
			for j := 0; j < 100; j++ {
				directory.Upsert(address, fmt.Sprintf("name-%d", i))
				_ = directory.Resolve(address)
			}
		}(i)
	}
	wg.Wait()

	require.EqualValues(4, directory.Len())
}
