package pipeline

// PerPopulation is the population base the cancer registry reports rates against.
const PerPopulation = 100000.0

// ScalePopulation converts each population estimate into units of 100,000 people.
func ScalePopulation(rows []Row) {
	for i := range rows {
		rows[i].Population /= PerPopulation
	}
}

// ApplyRate multiplies each per-100k Rate by the already scaled population,
// turning it into an estimated annual incidence count. Fractional results
// are kept as is.
func ApplyRate(rows []Row) {
	for i := range rows {
		rows[i].Rate *= rows[i].Population
	}
}

// Rescale runs ScalePopulation then ApplyRate. The order matters: ApplyRate
// consumes the divided population.
func Rescale(rows []Row) {
	ScalePopulation(rows)
	ApplyRate(rows)
}
