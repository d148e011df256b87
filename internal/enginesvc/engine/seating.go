package engine

import (
	"sort"

	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/models"
)

// Placement is the outcome of a seat assignment. When CreateTable is set the
// table does not exist yet and must be created with the given number.
type Placement struct {
	TableNumber int
	SeatNumber  int
	MaxSeats    int
	CreateTable bool
}

// FinalTablePlan is the outcome of final-table consolidation.
type FinalTablePlan struct {
	DeactivateTables []int             // table numbers losing their games
	Moves            []models.SeatMove // reseats into table 1
}

// occupancy of a table: seat number -> session.
func tableOccupancy(tableNo int, sessions []*models.GameSession) map[int]*models.GameSession {
	seats := make(map[int]*models.GameSession)
	for _, s := range sessions {
		if s.Status != models.SessionActive || !s.Seated() {
			continue
		}
		if *s.TableNumber == tableNo {
			seats[*s.SeatNumber] = s
		}
	}
	return seats
}

func lowestFreeSeat(occupied map[int]*models.GameSession, maxSeats int) int {
	for seat := 1; seat <= maxSeats; seat++ {
		if _, taken := occupied[seat]; !taken {
			return seat
		}
	}
	return 0
}

// AssignSeat picks a (table, seat) for a new check-in. Greedy: the active
// table with the fewest occupied seats that still has room, ties broken by
// lowest table number; within the table, the lowest unused seat. When every
// active table is full (or none exists) a new table is opened at
// max(existing)+1, starting from 1.
//
// The caller must hold the game's seating lock: concurrent check-ins racing
// through here would otherwise pick the same seat.
func AssignSeat(tables []*models.GameTable, sessions []*models.GameSession) Placement {
	active := make([]*models.GameTable, 0, len(tables))
	maxNo := 0
	for _, t := range tables {
		if t.TableNumber > maxNo {
			maxNo = t.TableNumber
		}
		if t.IsActive {
			active = append(active, t)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].TableNumber < active[j].TableNumber
	})

	var best *models.GameTable
	bestCount := 0
	for _, t := range active {
		n := len(tableOccupancy(t.TableNumber, sessions))
		if n >= t.MaxSeats {
			continue
		}
		if best == nil || n < bestCount {
			best = t
			bestCount = n
		}
	}
	if best == nil {
		return Placement{
			TableNumber: maxNo + 1,
			SeatNumber:  1,
			MaxSeats:    models.DefaultMaxSeats,
			CreateTable: true,
		}
	}
	seat := lowestFreeSeat(tableOccupancy(best.TableNumber, sessions), best.MaxSeats)
	return Placement{TableNumber: best.TableNumber, SeatNumber: seat, MaxSeats: best.MaxSeats}
}

// ProposeBalance computes moves that even out table occupancy. Ideal load is
// ceil(activePlayers / activeTables); a table strictly above ideal gives up
// its most-recently-seated occupant (at most one per table per call) to the
// most under-occupied table's lowest free seat. A table at exactly ideal-1
// is neither source nor target, which makes the layout a fixed point instead
// of oscillating.
//
// Moves are proposals only. Applying them is a separate approve step so the
// floor can review before seats change mid-hand.
func ProposeBalance(tables []*models.GameTable, sessions []*models.GameSession) []models.SeatMove {
	active := make([]*models.GameTable, 0, len(tables))
	for _, t := range tables {
		if t.IsActive {
			active = append(active, t)
		}
	}
	if len(active) == 0 {
		return nil
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].TableNumber < active[j].TableNumber
	})

	totalActive := 0
	for _, s := range sessions {
		if s.Status == models.SessionActive && s.Seated() {
			totalActive++
		}
	}
	ideal := (totalActive + len(active) - 1) / len(active)

	counts := make(map[int]int, len(active))
	for _, t := range active {
		counts[t.TableNumber] = len(tableOccupancy(t.TableNumber, sessions))
	}

	var moves []models.SeatMove
	// seats already claimed by earlier proposals in this pass, so two
	// sources draining into the same target never share a chair
	proposed := make(map[int]map[int]bool)
	for _, src := range active {
		if counts[src.TableNumber] <= ideal {
			continue
		}
		// most under-occupied target with room, lowest table number on ties
		var dst *models.GameTable
		for _, t := range active {
			if t.TableNumber == src.TableNumber {
				continue
			}
			if counts[t.TableNumber] >= ideal-1 {
				continue
			}
			if counts[t.TableNumber] >= t.MaxSeats {
				continue
			}
			if dst == nil || counts[t.TableNumber] < counts[dst.TableNumber] {
				dst = t
			}
		}
		if dst == nil {
			continue
		}
		mover := mostRecentlySeated(src.TableNumber, sessions)
		if mover == nil {
			continue
		}
		occ := tableOccupancy(dst.TableNumber, sessions)
		seat := 0
		for n := 1; n <= dst.MaxSeats; n++ {
			if _, taken := occ[n]; taken {
				continue
			}
			if proposed[dst.TableNumber][n] {
				continue
			}
			seat = n
			break
		}
		if seat == 0 {
			continue
		}
		if proposed[dst.TableNumber] == nil {
			proposed[dst.TableNumber] = make(map[int]bool)
		}
		proposed[dst.TableNumber][seat] = true
		moves = append(moves, models.SeatMove{
			SessionID: mover.ID,
			PersonID:  mover.PersonID,
			FromTable: *mover.TableNumber,
			FromSeat:  *mover.SeatNumber,
			ToTable:   dst.TableNumber,
			ToSeat:    seat,
		})
		counts[src.TableNumber]--
		counts[dst.TableNumber]++
	}
	return moves
}

func mostRecentlySeated(tableNo int, sessions []*models.GameSession) *models.GameSession {
	var latest *models.GameSession
	for _, s := range sessions {
		if s.Status != models.SessionActive || !s.Seated() || *s.TableNumber != tableNo {
			continue
		}
		if latest == nil {
			latest = s
			continue
		}
		switch {
		case s.SeatedAt != nil && latest.SeatedAt != nil:
			if s.SeatedAt.After(*latest.SeatedAt) {
				latest = s
			}
		case s.SeatedAt != nil:
			latest = s
		case latest.SeatedAt == nil && s.ID > latest.ID:
			latest = s
		}
	}
	return latest
}

// PlanFinalTable consolidates everyone onto table 1 once the field fits a
// single table. All remaining active players reseat sequentially from seat 1
// with no affinity to their old seats; every other table deactivates.
func PlanFinalTable(tables []*models.GameTable, sessions []*models.GameSession) (*FinalTablePlan, error) {
	capacity := models.DefaultMaxSeats
	for _, t := range tables {
		if t.TableNumber == 1 {
			capacity = t.MaxSeats
		}
	}
	remaining := make([]*models.GameSession, 0, len(sessions))
	for _, s := range sessions {
		if s.Status == models.SessionActive {
			remaining = append(remaining, s)
		}
	}
	if len(remaining) > capacity {
		return nil, Validationf("%d players remain, final table seats %d", len(remaining), capacity)
	}
	// stable reseat order: by current table then seat
	sort.Slice(remaining, func(i, j int) bool {
		ti, tj := seatSortKey(remaining[i]), seatSortKey(remaining[j])
		return ti < tj
	})

	plan := &FinalTablePlan{}
	for _, t := range tables {
		if t.IsActive && t.TableNumber != 1 {
			plan.DeactivateTables = append(plan.DeactivateTables, t.TableNumber)
		}
	}
	for i, s := range remaining {
		move := models.SeatMove{
			SessionID: s.ID,
			PersonID:  s.PersonID,
			ToTable:   1,
			ToSeat:    i + 1,
		}
		if s.Seated() {
			move.FromTable = *s.TableNumber
			move.FromSeat = *s.SeatNumber
		}
		plan.Moves = append(plan.Moves, move)
	}
	return plan, nil
}

func seatSortKey(s *models.GameSession) int {
	if !s.Seated() {
		return 1 << 20
	}
	return *s.TableNumber*100 + *s.SeatNumber
}
