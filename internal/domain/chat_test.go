package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChatLog_EvictsOldestFirst(t *testing.T) {
	log := NewChatLog(3)
	for i := 1; i <= 5; i++ {
		log.Append(ChatEntry{ID: fmt.Sprint(i)})
	}
	assert.Equal(t, 3, log.Len())

	ids := []string{}
	for _, e := range log.Entries() {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"3", "4", "5"}, ids)
}

func TestChatLog_EntriesIsCopy(t *testing.T) {
	log := NewChatLog(2)
	log.Append(ChatEntry{ID: "a"})
	out := log.Entries()
	out[0].ID = "mutated"
	assert.Equal(t, "a", log.Entries()[0].ID)
}
