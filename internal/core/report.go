package core

type (
	// DailyReport covers a single calendar day with per-client and
	// per-project totals, no entry detail.
	DailyReport struct {
		Date      string         `json:"date"`
		TotalTime int64          `json:"totalTime"`
		Clients   []ClientTotals `json:"clients"`
	}

	// WeeklyReport covers a Sunday..Saturday window with flat client
	// totals only.
	WeeklyReport struct {
		StartDate string        `json:"startDate"`
		EndDate   string        `json:"endDate"`
		TotalTime int64         `json:"totalTime"`
		Clients   []ClientTotal `json:"clients"`
	}

	// CustomReport covers an arbitrary inclusive day range and carries
	// the individual entries under each project.
	CustomReport struct {
		StartDate string         `json:"startDate"`
		EndDate   string         `json:"endDate"`
		TotalTime int64          `json:"totalTime"`
		Clients   []ClientDetail `json:"clients"`
	}

	ClientTotal struct {
		Client Client `json:"client"`
		Total  int64  `json:"total"`
	}

	ClientTotals struct {
		Client   Client         `json:"client"`
		Total    int64          `json:"total"`
		Projects []ProjectTotal `json:"projects"`
	}

	ProjectTotal struct {
		Project Project `json:"project"`
		Total   int64   `json:"total"`
	}

	ClientDetail struct {
		Client   Client          `json:"client"`
		Total    int64           `json:"total"`
		Projects []ProjectDetail `json:"projects"`
	}

	ProjectDetail struct {
		Project Project     `json:"project"`
		Total   int64       `json:"total"`
		Entries []EntryLine `json:"entries"`
	}

	EntryLine struct {
		ID          string `json:"id"`
		Date        string `json:"date"`
		Duration    int64  `json:"duration"`
		Description string `json:"description,omitempty"`
	}
)

// ReportTree accumulates closed time entries into the client→project
// grouping shared by all report shapes: a grand total, a subtotal per
// client, a subtotal per project, and optionally the entry lines under
// each project. Grouping follows first-seen order of clients and projects
// during the scan; entry lines keep the order they were fed in. A tree is
// built per report call and never shared.
type ReportTree struct {
	total       int64
	clientOrder []string
	clients     map[string]*clientAcc
	keepEntries bool
}

type clientAcc struct {
	client       Client
	total        int64
	projectOrder []string
	projects     map[string]*projectAcc
}

type projectAcc struct {
	project Project
	total   int64
	entries []EntryLine
}

// NewReportTree creates an empty accumulator. keepEntries controls whether
// entry lines are collected under each project.
func NewReportTree(keepEntries bool) *ReportTree {
	return &ReportTree{
		clients:     make(map[string]*clientAcc),
		keepEntries: keepEntries,
	}
}

// Add folds one entry into the tree. Each entry contributes its duration
// exactly once to the grand total, its client subtotal and its project
// subtotal. Running entries contribute nothing.
func (t *ReportTree) Add(entry TimeEntry, client Client, project Project) {
	if entry.Duration == nil {
		return
	}
	d := *entry.Duration
	t.total += d

	ca, ok := t.clients[entry.ClientID]
	if !ok {
		ca = &clientAcc{
			client:   client,
			projects: make(map[string]*projectAcc),
		}
		t.clients[entry.ClientID] = ca
		t.clientOrder = append(t.clientOrder, entry.ClientID)
	}
	ca.total += d

	pa, ok := ca.projects[entry.ProjectID]
	if !ok {
		pa = &projectAcc{project: project}
		ca.projects[entry.ProjectID] = pa
		ca.projectOrder = append(ca.projectOrder, entry.ProjectID)
	}
	pa.total += d

	if t.keepEntries {
		pa.entries = append(pa.entries, EntryLine{
			ID:          entry.ID,
			Date:        entry.Date,
			Duration:    d,
			Description: entry.Description,
		})
	}
}

// TotalTime returns the grand total in milliseconds.
func (t *ReportTree) TotalTime() int64 {
	return t.total
}

// ClientTotals returns the flat per-client totals (weekly shape).
func (t *ReportTree) ClientTotals() []ClientTotal {
	out := make([]ClientTotal, 0, len(t.clientOrder))
	for _, id := range t.clientOrder {
		ca := t.clients[id]
		out = append(out, ClientTotal{Client: ca.client, Total: ca.total})
	}
	return out
}

// ClientProjectTotals returns the two-level totals tree (daily shape).
func (t *ReportTree) ClientProjectTotals() []ClientTotals {
	out := make([]ClientTotals, 0, len(t.clientOrder))
	for _, id := range t.clientOrder {
		ca := t.clients[id]
		projects := make([]ProjectTotal, 0, len(ca.projectOrder))
		for _, pid := range ca.projectOrder {
			pa := ca.projects[pid]
			projects = append(projects, ProjectTotal{Project: pa.project, Total: pa.total})
		}
		out = append(out, ClientTotals{Client: ca.client, Total: ca.total, Projects: projects})
	}
	return out
}

// Detailed returns the full tree including entry lines (custom shape).
func (t *ReportTree) Detailed() []ClientDetail {
	out := make([]ClientDetail, 0, len(t.clientOrder))
	for _, id := range t.clientOrder {
		ca := t.clients[id]
		projects := make([]ProjectDetail, 0, len(ca.projectOrder))
		for _, pid := range ca.projectOrder {
			pa := ca.projects[pid]
			projects = append(projects, ProjectDetail{
				Project: pa.project,
				Total:   pa.total,
				Entries: pa.entries,
			})
		}
		out = append(out, ClientDetail{Client: ca.client, Total: ca.total, Projects: projects})
	}
	return out
}
