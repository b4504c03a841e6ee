package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/tripplanner/backend/internal/dashboard"
	"github.com/tripplanner/backend/internal/domain"
)

const dateLayout = "2006-01-02"

func renderDashboard(w io.Writer, s dashboard.State) {
	if s.Err != "" {
		fmt.Fprintf(w, "Error: %s\nType 'retry' to try again.\n", s.Err)
		return
	}

	var filters []string
	if s.EffectiveSearch != "" {
		filters = append(filters, fmt.Sprintf("search %q", s.EffectiveSearch))
	}
	if s.Destination != "" {
		filters = append(filters, fmt.Sprintf("destination %q", s.Destination))
	}
	if len(filters) > 0 {
		fmt.Fprintf(w, "Filtered by %s\n", strings.Join(filters, " and "))
	}

	if len(s.Trips) == 0 {
		fmt.Fprintln(w, "No trips found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tDESTINATION\tDAYS\tBUDGET\tCREATED")
	for _, t := range s.Trips {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.2f\t%s\n",
			t.ID, t.Title, t.Destination, t.Days, t.Budget, t.CreatedAt.Format(dateLayout))
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "Page %d of %d\n", s.Page, max(s.TotalPages, 1))
	if len(s.Destinations) > 0 {
		fmt.Fprintf(w, "Destinations: %s\n", strings.Join(s.Destinations, "; "))
	}
}

func renderTrip(w io.Writer, t domain.Trip) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%s\n", t.ID)
	fmt.Fprintf(tw, "Title\t%s\n", t.Title)
	fmt.Fprintf(tw, "Destination\t%s\n", t.Destination)
	fmt.Fprintf(tw, "Days\t%d\n", t.Days)
	fmt.Fprintf(tw, "Budget\t%.2f\n", t.Budget)
	fmt.Fprintf(tw, "Created\t%s\n", t.CreatedAt.Format(dateLayout))
	_ = tw.Flush()
}
