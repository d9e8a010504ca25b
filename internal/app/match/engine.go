// internal/app/match/engine.go
package match

import (
	"errors"
	"sort"

	"github.com/hostelhaven/roomsync/internal/domain/models"
)

var (
	ErrRoomTypeNotSet       = errors.New("select a room type before requesting matches")
	ErrSingleRoomNoMatching = errors.New("single rooms do not take part in roommate matching")
	ErrRoomTypeMismatch     = errors.New("requested room type does not match the student's selected room type")
	ErrPreferencesNotSet    = errors.New("set lifestyle preferences before requesting matches")
)

// Candidate is one scored match suggestion. BelowThreshold marks entries
// returned by the fallback path: nobody cleared the minimum score, so the
// best of the rest is returned rather than an empty list, and the caller is
// expected to surface the flag.
type Candidate struct {
	Student        models.Student `json:"student"`
	Score          int            `json:"score"`
	BelowThreshold bool           `json:"below_threshold,omitempty"`
}

// GroupProposal is a suggested roommate group: the requester plus Members.
// AverageScore is the mean of all pairwise scores among the proposed
// occupants, requester included.
type GroupProposal struct {
	Members             []Candidate `json:"members"`
	AverageScore        int         `json:"average_score"`
	RecommendedRoomType string      `json:"recommended_room_type"`
	BelowThreshold      bool        `json:"below_threshold,omitempty"`
}

// Engine ranks candidates from a pre-filtered pool. The pool queries (same
// gender, same room type, unallocated, no active group, preferences set)
// belong to the student store; the engine only scores and assembles.
type Engine struct {
	// TopK caps the fallback list when no candidate clears the minimum
	// score. Zero means DefaultTopK.
	TopK int
}

// DefaultTopK matches the suggestion-list size of the original service.
const DefaultTopK = 5

func (e Engine) topK() int {
	if e.TopK > 0 {
		return e.TopK
	}
	return DefaultTopK
}

// FindIndividualMatches scores every pool member against the target and
// returns those at or above minScore, best first. If nobody qualifies it
// falls back to the top-K below-threshold candidates, flagged as such.
// Ties break on candidate id for deterministic ordering.
func (e Engine) FindIndividualMatches(target models.Student, pool []models.Student, minScore int, roomType string) ([]Candidate, error) {
	if err := validateTarget(target, roomType); err != nil {
		return nil, err
	}

	scored := e.scorePool(target, pool)

	qualified := make([]Candidate, 0, len(scored))
	for _, c := range scored {
		if c.Score >= minScore {
			qualified = append(qualified, c)
		}
	}
	if len(qualified) > 0 {
		return qualified, nil
	}

	// Fallback: below-threshold suggestions beat a dead end, but they are
	// marked so the caller can present them honestly.
	if len(scored) > e.topK() {
		scored = scored[:e.topK()]
	}
	for i := range scored {
		scored[i].BelowThreshold = true
	}
	return scored, nil
}

// FindGroups greedily assembles proposals of capacity(roomType)-1 companions
// around the target, highest mutual average first. Each pool member appears
// in at most one proposal per call and the target is never among the
// returned members.
func (e Engine) FindGroups(target models.Student, pool []models.Student, minScore int, roomType string) ([]GroupProposal, error) {
	if err := validateTarget(target, roomType); err != nil {
		return nil, err
	}

	companions := models.RoomTypeCapacity(roomType) - 1
	if companions < 1 {
		return nil, ErrRoomTypeMismatch
	}

	scored := e.scorePool(target, pool)
	if len(scored) < companions {
		return nil, nil
	}

	// Pairwise scores among candidates are needed to rank additions by
	// mutual average, not just affinity to the target.
	pair := make(map[[2]int]int)
	score := func(i, j int) int {
		if i == j {
			return MaxScore
		}
		if i > j {
			i, j = j, i
		}
		key := [2]int{i, j}
		if s, ok := pair[key]; ok {
			return s
		}
		s := Score(scored[i].Student.AIPreferences, scored[j].Student.AIPreferences)
		pair[key] = s
		return s
	}

	used := make([]bool, len(scored))
	var proposals []GroupProposal

	for seed := 0; seed < len(scored); seed++ {
		if used[seed] {
			continue
		}
		chosen := []int{seed}
		for len(chosen) < companions {
			best, bestAvg := -1, -1
			for cand := 0; cand < len(scored); cand++ {
				if used[cand] || cand == seed || contains(chosen, cand) {
					continue
				}
				avg := scored[cand].Score
				for _, c := range chosen {
					avg += score(cand, c)
				}
				avg /= len(chosen) + 1
				if avg > bestAvg {
					best, bestAvg = cand, avg
				}
			}
			if best < 0 {
				break
			}
			chosen = append(chosen, best)
		}
		if len(chosen) < companions {
			break
		}

		// Mean over all pairs among target + chosen members.
		sum, pairs := 0, 0
		for _, c := range chosen {
			sum += scored[c].Score
			pairs++
		}
		for i := 0; i < len(chosen); i++ {
			for j := i + 1; j < len(chosen); j++ {
				sum += score(chosen[i], chosen[j])
				pairs++
			}
		}
		avg := sum / pairs

		members := make([]Candidate, len(chosen))
		for i, c := range chosen {
			used[c] = true
			members[i] = scored[c]
		}
		proposals = append(proposals, GroupProposal{
			Members:             members,
			AverageScore:        avg,
			RecommendedRoomType: models.RecommendedRoomType(companions + 1),
			BelowThreshold:      avg < minScore,
		})
	}

	sort.SliceStable(proposals, func(i, j int) bool {
		return proposals[i].AverageScore > proposals[j].AverageScore
	})

	// Prefer qualifying proposals; fall back to flagged ones only when no
	// proposal clears the bar, mirroring FindIndividualMatches.
	qualified := proposals[:0:0]
	for _, p := range proposals {
		if !p.BelowThreshold {
			qualified = append(qualified, p)
		}
	}
	if len(qualified) > 0 {
		return qualified, nil
	}
	if len(proposals) > e.topK() {
		proposals = proposals[:e.topK()]
	}
	return proposals, nil
}

// scorePool scores all eligible pool members against the target, sorted by
// score descending with candidate-id tiebreak. Self-references and members
// without preferences are skipped defensively; the store query should have
// excluded them already.
func (e Engine) scorePool(target models.Student, pool []models.Student) []Candidate {
	scored := make([]Candidate, 0, len(pool))
	for _, s := range pool {
		if s.ID == target.ID || !s.AIPreferences.IsSet() {
			continue
		}
		scored = append(scored, Candidate{
			Student: s,
			Score:   Score(target.AIPreferences, s.AIPreferences),
		})
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Student.ID.Hex() < scored[j].Student.ID.Hex()
	})
	return scored
}

func validateTarget(target models.Student, roomType string) error {
	if target.SelectedRoomType == "" {
		return ErrRoomTypeNotSet
	}
	if target.SelectedRoomType == models.RoomTypeSingle {
		return ErrSingleRoomNoMatching
	}
	if roomType != target.SelectedRoomType {
		return ErrRoomTypeMismatch
	}
	if !target.AIPreferences.IsSet() {
		return ErrPreferencesNotSet
	}
	return nil
}

func contains(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
