package registry

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Askiater/speak-to-me/internal/domain"
)

func participant(connID string) domain.Participant {
	return domain.Participant{
		ConnectionID: connID,
		Username:     "user-" + connID,
		JoinedAt:     time.Now(),
	}
}

func TestCreateAndFind(t *testing.T) {
	reg := New()

	uid := int64(7)
	created, err := reg.Create("r1", domain.Identity{UserID: &uid, Username: "alice"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID != "r1" || created.CreatorUsername != "alice" {
		t.Errorf("created = %+v", created)
	}

	found, err := reg.Find("r1")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(found.Participants) != 0 {
		t.Errorf("new room has %d participants, want 0", len(found.Participants))
	}

	if _, err := reg.Create("r1", domain.Guest()); !errors.Is(err, domain.ErrRoomExists) {
		t.Errorf("duplicate Create() error = %v, want ErrRoomExists", err)
	}
}

func TestFindMissing(t *testing.T) {
	reg := New()
	if _, err := reg.Find("nope"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Errorf("Find() error = %v, want ErrRoomNotFound", err)
	}
}

func TestJoinMissingRoom(t *testing.T) {
	reg := New()
	if _, err := reg.Join("nope", participant("c1"), 2); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Errorf("Join() error = %v, want ErrRoomNotFound", err)
	}
	if len(reg.List()) != 0 {
		t.Errorf("failed join must not create rooms")
	}
}

func TestJoinCap(t *testing.T) {
	reg := New()
	reg.Create("r1", domain.Guest())

	if _, err := reg.Join("r1", participant("c1"), 2); err != nil {
		t.Fatalf("first Join() error = %v", err)
	}
	if _, err := reg.Join("r1", participant("c2"), 2); err != nil {
		t.Fatalf("second Join() error = %v", err)
	}
	if _, err := reg.Join("r1", participant("c3"), 2); !errors.Is(err, domain.ErrRoomFull) {
		t.Errorf("third Join() error = %v, want ErrRoomFull", err)
	}

	room, _ := reg.Find("r1")
	if len(room.Participants) != 2 {
		t.Errorf("room has %d participants, want 2", len(room.Participants))
	}
}

func TestJoinOrderPreserved(t *testing.T) {
	reg := New()
	reg.Create("r1", domain.Guest())

	for _, id := range []string{"c1", "c2", "c3"} {
		if _, err := reg.Join("r1", participant(id), 0); err != nil {
			t.Fatalf("Join(%s) error = %v", id, err)
		}
	}

	room, _ := reg.Find("r1")
	for i, want := range []string{"c1", "c2", "c3"} {
		if room.Participants[i].ConnectionID != want {
			t.Errorf("participants[%d] = %s, want %s", i, room.Participants[i].ConnectionID, want)
		}
	}
}

func TestLeaveLifecycle(t *testing.T) {
	reg := New()
	reg.Create("r1", domain.Guest())
	reg.Join("r1", participant("c1"), 2)
	reg.Join("r1", participant("c2"), 2)

	remaining, removed, err := reg.Leave("r1", "c1")
	if err != nil || !removed {
		t.Fatalf("Leave(c1) = (%v, %v), want removed", err, removed)
	}
	if len(remaining) != 1 || remaining[0].ConnectionID != "c2" {
		t.Errorf("remaining = %+v, want [c2]", remaining)
	}

	// последний участник уходит — комната исчезает
	remaining, removed, err = reg.Leave("r1", "c2")
	if err != nil || !removed || len(remaining) != 0 {
		t.Fatalf("Leave(c2) = (%v, %v, %v)", remaining, removed, err)
	}
	if _, err := reg.Find("r1"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Errorf("empty room must be gone, Find() error = %v", err)
	}
}

func TestLeaveIdempotent(t *testing.T) {
	reg := New()
	reg.Create("r1", domain.Guest())
	reg.Join("r1", participant("c1"), 2)
	reg.Join("r1", participant("c2"), 2)

	reg.Leave("r1", "c1")

	// повторный уход уже снятого участника — no-op
	remaining, removed, err := reg.Leave("r1", "c1")
	if err != nil || removed {
		t.Errorf("repeated Leave = (%v, %v), want no-op", err, removed)
	}
	if len(remaining) != 0 {
		t.Errorf("no-op leave returned remaining = %+v", remaining)
	}

	room, _ := reg.Find("r1")
	if len(room.Participants) != 1 {
		t.Errorf("room has %d participants, want 1", len(room.Participants))
	}

	if _, _, err := reg.Leave("gone", "c1"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Errorf("Leave on missing room error = %v, want ErrRoomNotFound", err)
	}
}

func TestLeaveUpdatesActivity(t *testing.T) {
	reg := New()
	reg.Create("r1", domain.Guest())
	before, _ := reg.Find("r1")

	reg.Join("r1", participant("c1"), 2)
	after, _ := reg.Find("r1")

	if after.LastActivityAt.Before(before.LastActivityAt) {
		t.Errorf("lastActivityAt went backwards")
	}
}

func TestDeleteReturnsParticipants(t *testing.T) {
	reg := New()
	reg.Create("r1", domain.Guest())
	reg.Join("r1", participant("c1"), 2)
	reg.Join("r1", participant("c2"), 2)

	parts, err := reg.Delete("r1")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(parts) != 2 {
		t.Errorf("Delete returned %d participants, want 2", len(parts))
	}
	if _, err := reg.Find("r1"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Errorf("room still present after Delete")
	}

	if _, err := reg.Delete("r1"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Errorf("second Delete() error = %v, want ErrRoomNotFound", err)
	}
}

func TestReapEmptyRoom(t *testing.T) {
	reg := New()
	reg.Create("r1", domain.Guest())

	kicked, deleted := reg.Reap("r1", time.Now(), 10*time.Minute)
	if !deleted || kicked != nil {
		t.Errorf("Reap = (%v, %v), want empty room deleted without kick", kicked, deleted)
	}
	if _, err := reg.Find("r1"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Errorf("room still present after reap")
	}
}

func TestReapStaleLoneParticipant(t *testing.T) {
	reg := New()
	reg.Create("r1", domain.Guest())
	reg.Join("r1", participant("c1"), 2)

	kicked, deleted := reg.Reap("r1", time.Now().Add(11*time.Minute), 10*time.Minute)
	if !deleted || kicked == nil {
		t.Fatalf("Reap = (%v, %v), want lone participant kicked", kicked, deleted)
	}
	if kicked.ConnectionID != "c1" {
		t.Errorf("kicked = %s, want c1", kicked.ConnectionID)
	}
	if _, err := reg.Find("r1"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Errorf("room still present after reap")
	}
}

func TestReapFreshLoneParticipant(t *testing.T) {
	reg := New()
	reg.Create("r1", domain.Guest())
	reg.Join("r1", participant("c1"), 2)

	kicked, deleted := reg.Reap("r1", time.Now(), 10*time.Minute)
	if deleted || kicked != nil {
		t.Errorf("fresh lone participant must not be reaped")
	}
}

func TestReapNeverTouchesPairs(t *testing.T) {
	reg := New()
	reg.Create("r1", domain.Guest())
	reg.Join("r1", participant("c1"), 2)
	reg.Join("r1", participant("c2"), 2)

	// простаивает сколь угодно долго — пара не трогается
	kicked, deleted := reg.Reap("r1", time.Now().Add(24*time.Hour), 10*time.Minute)
	if deleted || kicked != nil {
		t.Errorf("paired room must never be reaped")
	}

	room, _ := reg.Find("r1")
	if len(room.Participants) != 2 {
		t.Errorf("room has %d participants, want 2", len(room.Participants))
	}
}

func TestConcurrentJoinsDistinctRooms(t *testing.T) {
	reg := New()
	const rooms = 8
	const perRoom = 16

	for i := 0; i < rooms; i++ {
		reg.Create(fmt.Sprintf("r%d", i), domain.Guest())
	}

	var wg sync.WaitGroup
	for i := 0; i < rooms; i++ {
		for j := 0; j < perRoom; j++ {
			wg.Add(1)
			go func(room, n int) {
				defer wg.Done()
				reg.Join(fmt.Sprintf("r%d", room), participant(fmt.Sprintf("r%d-c%d", room, n)), 0)
			}(i, j)
		}
	}
	wg.Wait()

	for i := 0; i < rooms; i++ {
		room, err := reg.Find(fmt.Sprintf("r%d", i))
		if err != nil {
			t.Fatalf("Find(r%d) error = %v", i, err)
		}
		if len(room.Participants) != perRoom {
			t.Errorf("r%d has %d participants, want %d", i, len(room.Participants), perRoom)
		}
	}
}

func TestConcurrentJoinLeave(t *testing.T) {
	reg := New()
	reg.Create("r1", domain.Guest())

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("c%d", n)
			if _, err := reg.Join("r1", participant(id), 0); err != nil {
				return
			}
			reg.Leave("r1", id)
		}(i)
	}
	wg.Wait()

	// каждый успешный join сопровождён leave — комната обязана исчезнуть
	if _, err := reg.Find("r1"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Errorf("Find after all left: error = %v, want ErrRoomNotFound", err)
	}
}
