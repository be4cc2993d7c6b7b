package symbol_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/brimlang/brim/symbol"
	"github.com/stretchr/testify/assert"
)

func TestIntern(t *testing.T) {
	id0 := symbol.Intern("foo")
	id1 := symbol.Intern("bar")
	assert.NotEqual(t, id0, id1)
	assert.Equal(t, id0, symbol.Intern("foo"))
	assert.Equal(t, "foo", id0.Str())
	assert.Equal(t, "bar", id1.Str())
}

func TestHash(t *testing.T) {
	id0 := symbol.Intern("hash0")
	id1 := symbol.Intern("hash1")
	assert.Equal(t, id0.Hash(), symbol.Intern("hash0").Hash())
	assert.NotEqual(t, id0.Hash(), id1.Hash())
}

func TestConcurrentIntern(t *testing.T) {
	wg := sync.WaitGroup{}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				name := fmt.Sprintf("sym%d", j%37)
				id := symbol.Intern(name)
				if id.Str() != name {
					t.Errorf("intern %s -> %s", name, id.Str())
					return
				}
			}
		}()
	}
	wg.Wait()
}
