package simulation

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomTemperatureRange(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		v := NewRandomTemperature(r).Get()
		assert.GreaterOrEqual(t, v, -35.0)
		assert.Less(t, v, 35.0)
		assert.Equal(t, float64(int(v)), v)
	}
}

func TestConcurrentAdd(t *testing.T) {
	temp := NewTemperature(0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			temp.Add(1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50.0, temp.Get())
	temp.Set(-3)
	assert.Equal(t, -3.0, temp.Get())
}
