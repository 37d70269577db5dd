package habit

// Interest categories used by the template catalog and onboarding.
const (
	CategoryHealth       = "HEALTH"
	CategoryFitness      = "FITNESS"
	CategoryMindfulness  = "MINDFULNESS"
	CategoryProductivity = "PRODUCTIVITY"
	CategoryLearning     = "LEARNING"
	CategorySocial       = "SOCIAL"
	CategoryFinance      = "FINANCE"
)

const DefaultSuggestionCount = 5

// catalog is the static template set suggestions draw from. Order
// matters: selection and backfill both preserve it.
var catalog = []Habit{
	{Name: "Drink water", Icon: "droplet", Category: CategoryHealth, Schedule: ScheduleDaily, Trigger: TriggerManual},
	{Name: "Morning stretch", Icon: "sunrise", Category: CategoryFitness, Schedule: ScheduleDaily, Trigger: TriggerManual},
	{Name: "Meditate 10 minutes", Icon: "lotus", Category: CategoryMindfulness, Schedule: ScheduleDaily, Trigger: TriggerManual},
	{Name: "Plan tomorrow", Icon: "list", Category: CategoryProductivity, Schedule: ScheduleWeekdays, Trigger: TriggerAppOpen},
	{Name: "Read 20 pages", Icon: "book", Category: CategoryLearning, Schedule: ScheduleDaily, Trigger: TriggerManual},
	{Name: "Go for a run", Icon: "shoe", Category: CategoryFitness, Schedule: ScheduleWeekdays, Trigger: TriggerLocation},
	{Name: "Call a friend", Icon: "phone", Category: CategorySocial, Schedule: ScheduleWeekends, Trigger: TriggerManual},
	{Name: "Review spending", Icon: "wallet", Category: CategoryFinance, Schedule: ScheduleWeekends, Trigger: TriggerManual},
	{Name: "No screens after 10pm", Icon: "moon", Category: CategoryHealth, Schedule: ScheduleDaily, Trigger: TriggerScreenTime},
	{Name: "Journal", Icon: "pen", Category: CategoryMindfulness, Schedule: ScheduleDaily, Trigger: TriggerManual},
	{Name: "Inbox zero", Icon: "mail", Category: CategoryProductivity, Schedule: ScheduleWeekdays, Trigger: TriggerAppOpen},
	{Name: "Eat a vegetable", Icon: "carrot", Category: CategoryHealth, Schedule: ScheduleDaily, Trigger: TriggerManual},
}

// Catalog returns a copy of the habit template catalog.
func Catalog() []Habit {
	out := make([]Habit, len(catalog))
	copy(out, catalog)
	return out
}

// Suggest picks up to n templates whose category is in interests,
// preserving catalog order, then backfills with the remaining templates
// until n entries are reached or the catalog runs out. Deterministic
// for a fixed catalog.
func Suggest(interests []string, templates []Habit, n int) []Habit {
	if n <= 0 {
		return nil
	}

	wanted := make(map[string]struct{}, len(interests))
	for _, i := range interests {
		wanted[i] = struct{}{}
	}

	picked := make([]Habit, 0, n)
	taken := make(map[int]struct{}, n)
	for idx, t := range templates {
		if len(picked) >= n {
			break
		}
		if _, ok := wanted[t.Category]; ok {
			picked = append(picked, t)
			taken[idx] = struct{}{}
		}
	}
	for idx, t := range templates {
		if len(picked) >= n {
			break
		}
		if _, ok := taken[idx]; ok {
			continue
		}
		picked = append(picked, t)
	}
	return picked
}
