package reward

// BasePoints is awarded for every verified completion.
const BasePoints = 20

// Milestone maps a fixed completed-task count to a named badge with bonus
// points. The table is shared configuration, not per-entity data.
type Milestone struct {
	Count       int
	Name        string
	Description string
	BonusPoints int
}

// Milestones is the static badge table, ordered by count.
var Milestones = []Milestone{
	{Count: 1, Name: "First Step", Description: "Completed a first opportunity", BonusPoints: 10},
	{Count: 5, Name: "Helping Hand", Description: "Five verified completions", BonusPoints: 50},
	{Count: 10, Name: "Steady Contributor", Description: "Ten verified completions", BonusPoints: 100},
	{Count: 25, Name: "Community Champion", Description: "Twenty-five verified completions", BonusPoints: 250},
	{Count: 50, Name: "Pillar of Service", Description: "Fifty verified completions", BonusPoints: 500},
	{Count: 100, Name: "Century of Service", Description: "One hundred verified completions", BonusPoints: 1000},
}

// MilestoneFor returns the milestone whose count exactly equals
// completedTasks. The match is equality, not >=: a volunteer whose count
// jumps past a threshold does not receive it retroactively.
// INVARIANT: the Milestones table is never mutated
func MilestoneFor(completedTasks int) (Milestone, bool) {
	for _, m := range Milestones {
		if m.Count == completedTasks {
			return m, true
		}
	}
	return Milestone{}, false
}

// CompletionPoints returns the points earned for one verified completion,
// given the volunteer's completed-task count after the increment.
// PRE: completedTasks >= 1
// POST: Returns base points plus the loyalty bonus
func CompletionPoints(completedTasks int) int {
	return BasePoints + (completedTasks/5)*5
}
