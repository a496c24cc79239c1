package pipeline

// Join performs the four sequential inner joins on the state code:
// cancer ⋈ npdes ⋈ noNPDES ⋈ all ⋈ population.
//
// A row survives only when its state appears in every input. Inputs are
// expected to hold one row per state; duplicated keys multiply the output
// the way a relational inner join does. Output order follows cancer, then
// each right-hand input in its own order. Empty keys never match.
func Join(cancer []CancerRecord, npdes, noNPDES, all Counts, population []PopulationRecord) []Row {
	npdesIdx := indexCounts(npdes)
	noIdx := indexCounts(noNPDES)
	allIdx := indexCounts(all)
	popIdx := map[string][]int{}
	for i, p := range population {
		if p.State == "" {
			continue
		}
		popIdx[p.State] = append(popIdx[p.State], i)
	}

	var out []Row
	for _, c := range cancer {
		if c.State == "" {
			continue
		}
		for _, a := range npdesIdx[c.State] {
			for _, b := range noIdx[c.State] {
				for _, d := range allIdx[c.State] {
					for _, p := range popIdx[c.State] {
						out = append(out, Row{
							State:        c.State,
							Rate:         c.Rate,
							NPDESCount:   npdes.Rows[a].Count,
							NoNPDESCount: noNPDES.Rows[b].Count,
							Count:        all.Rows[d].Count,
							Population:   population[p].Estimate,
						})
					}
				}
			}
		}
	}
	return out
}

func indexCounts(c Counts) map[string][]int {
	idx := make(map[string][]int, len(c.Rows))
	for i, r := range c.Rows {
		if r.State == "" {
			continue
		}
		idx[r.State] = append(idx[r.State], i)
	}
	return idx
}
