package stat

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestCollect(t *testing.T) {
	InitStat()

	Collect("put", 1, 0, 10)
	Collect("get", 2, 1, 2048)
	Collect("get", 1, 0, 1024)

	assert.DeepEqual(t, Statistics(), Stats{
		{Operation: "get", Success: 3, Error: 1, Bytes: 3072},
		{Operation: "put", Success: 1, Bytes: 10},
	})
	assert.Equal(t, Statistics()[0].String(), "get: 3 files transferred with 1 errors, 3.0K bytes")
	assert.Equal(t, Statistics()[1].JSON(), `{"operation":"put","success":1,"error":0,"bytes":10}`)
}

func TestCollectDisabled(t *testing.T) {
	mu.Lock()
	enabled, stats = false, nil
	mu.Unlock()

	Collect("get", 1, 0, 1)
	assert.Equal(t, len(Statistics()), 0)
}
