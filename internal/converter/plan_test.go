package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtback/ots-tools/internal/types"
)

func TestBuildPlan(t *testing.T) {
	table := &types.Table{
		Headers: []string{"Name", "Summary", "Details", "Category"},
		Rows: []types.Row{
			{Index: 1, Line: 2, Cells: []string{"Solar", "Panels", "", "Energy"}},
			{Index: 2, Line: 4, Cells: []string{"Bikes", "Lanes"}},
			{Index: 3, Line: 5, Cells: []string{"Wind", "Turbines", "Tall", "Energy"}},
			{Index: 4, Line: 6, Cells: []string{"Empty", "", "", ""}},
		},
	}

	plan := BuildPlan(table, "Idea", "All ideas")

	assert.Equal(t, []string{"Idea_1: Solar", "Idea_2: Bikes", "Idea_3: Wind", "Idea_4: Empty"}, plan.Titles())
	assert.Equal(t, []string{"Energy", "Lanes"}, plan.Categories)
	assert.Equal(t, "All ideas", plan.TOCTitle)
	assert.Equal(t, "* [[Idea_1: Solar]] \n* [[Idea_2: Bikes]] \n* [[Idea_3: Wind]] \n* [[Idea_4: Empty]] \n", plan.TOCText)
	assert.Equal(t, 2+1+3, plan.SectionCount())

	solar := plan.Pages[0]
	require.Len(t, solar.Sections, 2)
	assert.Equal(t, Section{Index: 1, Header: "Summary", Body: "Panels"}, solar.Sections[0])
	assert.Equal(t, Section{Index: 2, Header: "Category", Body: "[[Category:Energy]]", Category: "Energy"}, solar.Sections[1])
	assert.Equal(t, "== Summary ==\nPanels", solar.Sections[0].Text())
	assert.Equal(t, 2, solar.Line)

	// With two cells, the second is both the last column and a category.
	bikes := plan.Pages[1]
	require.Len(t, bikes.Sections, 1)
	assert.Equal(t, "Summary", bikes.Sections[0].Header)
	assert.Equal(t, "Lanes", bikes.Category)

	assert.Empty(t, plan.Pages[3].Sections)
	assert.Empty(t, plan.Pages[3].Category)
}

func TestBuildPlan_NoRows(t *testing.T) {
	plan := BuildPlan(&types.Table{Headers: []string{"Name"}}, "Proposal", "List of Proposals")
	assert.Empty(t, plan.Pages)
	assert.Empty(t, plan.Categories)
	assert.Equal(t, "", plan.TOCText)
}
