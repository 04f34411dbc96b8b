package scope

import (
	constructioncarbon "github.com/superdango/construction-carbon"
)

// Grouping selects how lines are gathered into hotspot contributors.
type Grouping int

const (
	// BySubject groups lines by material or subject id.
	BySubject Grouping = iota
	// ByCategory groups lines by factor category.
	ByCategory
)

// Contributors regroups computed lines into hotspot contributors, in order of
// first appearance. Each contributor keeps its emissions per stage.
func Contributors(lines []constructioncarbon.LineEmission, by Grouping) []constructioncarbon.Contributor {
	contributors := make([]constructioncarbon.Contributor, 0)
	index := make(map[string]int)

	for _, emission := range lines {
		key := emission.Line.SubjectID()
		if by == ByCategory {
			key = emission.Factor.Category
		}

		i, found := index[key]
		if !found {
			contributors = append(contributors, constructioncarbon.Contributor{
				SubjectID: key,
				Stages:    make(map[constructioncarbon.Stage]constructioncarbon.KgCO2e),
			})
			i = len(contributors) - 1
			index[key] = i
		}

		contributors[i].Emissions += emission.Emission
		contributors[i].Stages[emission.Line.EffectiveModule().Stage()] += emission.Emission
	}

	return contributors
}
