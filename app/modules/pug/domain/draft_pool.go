package pugdomain

import "sort"

// AddOutcome is the result of adding a member to a queue.
type AddOutcome string

const (
	AddedQueueOpen    AddOutcome = "added_queue_open"
	AddedQueueNowFull AddOutcome = "added_queue_now_full"
	AlreadyMember     AddOutcome = "already_member"
)

// RemoveOutcome is the result of removing a member from a queue.
type RemoveOutcome string

const (
	Removed   RemoveOutcome = "removed"
	NotMember RemoveOutcome = "not_member"
)

// Queue is the membership contract shared by anything players can line up in.
type Queue interface {
	Members() []Player
	AddMember(p Player) (AddOutcome, error)
	RemoveMember(p Player) (RemoveOutcome, error)
	IsOpen() bool
}

var _ Queue = (*DraftPool)(nil)

// DraftPool is a bounded, ordered, duplicate-free list of members. Once it
// fills up, the members are frozen into a numbered index that captains draft
// from.
type DraftPool struct {
	members    []Player
	maxMembers int
	available  map[int]Player
	indexed    bool
}

// NewDraftPool creates a pool holding up to maxMembers players, optionally
// pre-seeded. Duplicate seeds keep their first position. A pool seeded to
// capacity is indexed immediately.
func NewDraftPool(maxMembers int, seed ...Player) (*DraftPool, error) {
	if maxMembers <= 0 {
		return nil, ErrInvalidCapacity
	}

	members := make([]Player, 0, maxMembers)
	for _, p := range seed {
		if indexOf(members, p.ID) >= 0 {
			continue
		}
		if len(members) == maxMembers {
			return nil, ErrQueueFull
		}
		members = append(members, p)
	}

	pool := &DraftPool{
		members:    members,
		maxMembers: maxMembers,
		available:  make(map[int]Player),
	}
	if !pool.IsOpen() {
		pool.GenerateAvailablePlayers()
	}
	return pool, nil
}

// MaxMembers returns the pool capacity.
func (d *DraftPool) MaxMembers() int {
	return d.maxMembers
}

// Len returns the current member count.
func (d *DraftPool) Len() int {
	return len(d.members)
}

// Members returns a copy of the members in insertion order.
func (d *DraftPool) Members() []Player {
	out := make([]Player, len(d.members))
	copy(out, d.members)
	return out
}

// Contains reports whether a player with the given ID is a member.
func (d *DraftPool) Contains(id PlayerID) bool {
	return indexOf(d.members, id) >= 0
}

// IsOpen reports whether the pool can still accept members.
func (d *DraftPool) IsOpen() bool {
	return len(d.members) < d.maxMembers
}

// AddMember appends p unless they are already a member. Filling the last
// slot freezes the members into the available-player index.
func (d *DraftPool) AddMember(p Player) (AddOutcome, error) {
	if d.Contains(p.ID) {
		return AlreadyMember, nil
	}
	if !d.IsOpen() {
		return "", ErrQueueClosed
	}

	d.members = append(d.members, p)
	if d.IsOpen() {
		return AddedQueueOpen, nil
	}

	d.GenerateAvailablePlayers()
	return AddedQueueNowFull, nil
}

// RemoveMember drops p from an open pool. Membership is frozen once the pool
// is full.
func (d *DraftPool) RemoveMember(p Player) (RemoveOutcome, error) {
	if !d.IsOpen() {
		return "", ErrQueueClosed
	}

	i := indexOf(d.members, p.ID)
	if i < 0 {
		return NotMember, nil
	}
	d.members = append(d.members[:i], d.members[i+1:]...)
	return Removed, nil
}

// Indexed reports whether the available-player index has been generated.
func (d *DraftPool) Indexed() bool {
	return d.indexed
}

// GenerateAvailablePlayers numbers the members 1..N in insertion order. It
// runs once; later calls leave the index untouched and return false.
func (d *DraftPool) GenerateAvailablePlayers() bool {
	if d.indexed {
		return false
	}
	d.available = make(map[int]Player, len(d.members))
	for i, p := range d.members {
		d.available[i+1] = p
	}
	d.indexed = true
	return true
}

// PopAvailablePlayer removes and returns the player with pick number n.
func (d *DraftPool) PopAvailablePlayer(n int) (Player, error) {
	p, ok := d.available[n]
	if !ok {
		return Player{}, ErrPickNotFound
	}
	delete(d.available, n)
	return p, nil
}

// RetractAvailablePlayer removes the player with the given ID from the index
// and returns the pick number they held.
func (d *DraftPool) RetractAvailablePlayer(id PlayerID) (int, bool) {
	for n, p := range d.available {
		if p.ID == id {
			delete(d.available, n)
			return n, true
		}
	}
	return 0, false
}

// AvailablePlayers lists the index ordered by pick number.
func (d *DraftPool) AvailablePlayers() []NumberedPlayer {
	out := make([]NumberedPlayer, 0, len(d.available))
	for n, p := range d.available {
		out = append(out, NumberedPlayer{Number: n, Player: p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// AvailableCount returns the number of undrafted players in the index.
func (d *DraftPool) AvailableCount() int {
	return len(d.available)
}
