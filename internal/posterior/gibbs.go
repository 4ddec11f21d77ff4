package posterior

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"golang.org/x/sync/errgroup"
)

// GibbsSampler fits the two-way hierarchical model
//
//	y[m][f] = mu[m] + b[f] + e[m][f]
//
// where mu[m] is the true mean metric of model m (fixed effect), b[f]
// is a shared fold effect (random effect, Normal(0, tau²)) capturing
// the correlation induced by evaluating every model on the same folds,
// and e is Normal(0, sigma²) noise. The fold effects are constrained to
// sum to zero; without that the likelihood cannot separate mu from the
// mean of b. All conditionals are conjugate, so plain Gibbs updates
// suffice.
//
// Chains run in parallel; chain c uses its own generator seeded with
// Seed+c, so results are reproducible regardless of scheduling.
type GibbsSampler struct {
	Prior Prior
}

// NewGibbsSampler returns a sampler with the given priors. Zero-value
// prior fields are replaced with the defaults.
func NewGibbsSampler(prior Prior) *GibbsSampler {
	def := DefaultPrior()
	if prior.MeanScale == 0 {
		prior.MeanScale = def.MeanScale
	}
	if prior.VarShape == 0 {
		prior.VarShape = def.VarShape
	}
	if prior.VarRate == 0 {
		prior.VarRate = def.VarRate
	}
	return &GibbsSampler{Prior: prior}
}

// Sample implements the Sampler interface.
func (g *GibbsSampler) Sample(ctx context.Context, observations []Observation, cfg MCMCConfig) (*ChainDraws, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	grid, err := buildGrid(observations)
	if err != nil {
		return nil, err
	}

	kept := cfg.Iterations - cfg.BurnIn
	chains := make([][][]float64, cfg.Chains) // [chain][model][draw]

	eg, _ := errgroup.WithContext(ctx)
	for c := 0; c < cfg.Chains; c++ {
		eg.Go(func() error {
			rng := rand.New(rand.NewSource(cfg.Seed + int64(c)))
			chains[c] = g.runChain(rng, grid, cfg.Iterations, cfg.BurnIn, kept)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	draws := &ChainDraws{
		ModelIDs: grid.modelIDs,
		Chains:   make(map[string][][]float64, len(grid.modelIDs)),
	}
	for m, id := range grid.modelIDs {
		perChain := make([][]float64, cfg.Chains)
		for c := 0; c < cfg.Chains; c++ {
			perChain[c] = chains[c][m]
		}
		draws.Chains[id] = perChain
	}
	return draws, nil
}

// grid is the complete model-by-fold observation matrix.
type grid struct {
	modelIDs []string
	foldIDs  []string
	y        [][]float64 // [model][fold]
}

// buildGrid arranges observations into a complete matrix. Every model
// must have exactly one value per fold; the hierarchical model has no
// missing-data step.
func buildGrid(observations []Observation) (*grid, error) {
	if len(observations) == 0 {
		return nil, fmt.Errorf("posterior: no observations")
	}

	modelSet := make(map[string]bool)
	foldSet := make(map[string]bool)
	for _, o := range observations {
		modelSet[o.ModelID] = true
		foldSet[o.FoldID] = true
	}
	modelIDs := sortedKeys(modelSet)
	foldIDs := sortedKeys(foldSet)

	modelIdx := indexOf(modelIDs)
	foldIdx := indexOf(foldIDs)

	y := make([][]float64, len(modelIDs))
	filled := make([][]bool, len(modelIDs))
	for m := range y {
		y[m] = make([]float64, len(foldIDs))
		filled[m] = make([]bool, len(foldIDs))
	}

	for _, o := range observations {
		m, f := modelIdx[o.ModelID], foldIdx[o.FoldID]
		if filled[m][f] {
			return nil, fmt.Errorf("posterior: duplicate observation for model %q fold %q", o.ModelID, o.FoldID)
		}
		y[m][f] = o.Value
		filled[m][f] = true
	}
	for m, row := range filled {
		for f, ok := range row {
			if !ok {
				return nil, fmt.Errorf("posterior: model %q has no observation for fold %q", modelIDs[m], foldIDs[f])
			}
		}
	}

	return &grid{modelIDs: modelIDs, foldIDs: foldIDs, y: y}, nil
}

// runChain executes one Gibbs chain and returns the kept draws of each
// model mean, [model][draw].
func (g *GibbsSampler) runChain(rng *rand.Rand, gr *grid, iterations, burnIn, kept int) [][]float64 {
	M := len(gr.modelIDs)
	F := len(gr.foldIDs)

	mu0 := g.Prior.MeanLoc
	s02 := g.Prior.MeanScale * g.Prior.MeanScale
	a0 := g.Prior.VarShape
	r0 := g.Prior.VarRate

	// Initialize at the data: model means, zero fold effects, pooled
	// residual variance.
	mu := make([]float64, M)
	for m := 0; m < M; m++ {
		sum := 0.0
		for f := 0; f < F; f++ {
			sum += gr.y[m][f]
		}
		mu[m] = sum / float64(F)
	}
	b := make([]float64, F)
	sigma2 := pooledVariance(gr.y, mu)
	if sigma2 <= 0 {
		sigma2 = 1e-6
	}
	tau2 := sigma2

	out := make([][]float64, M)
	for m := range out {
		out[m] = make([]float64, 0, kept)
	}

	for it := 0; it < iterations; it++ {
		// Model means
		for m := 0; m < M; m++ {
			prec := float64(F)/sigma2 + 1/s02
			sum := 0.0
			for f := 0; f < F; f++ {
				sum += gr.y[m][f] - b[f]
			}
			mean := (sum/sigma2 + mu0/s02) / prec
			mu[m] = mean + rng.NormFloat64()/math.Sqrt(prec)
		}

		// Fold effects
		for f := 0; f < F; f++ {
			prec := float64(M)/sigma2 + 1/tau2
			sum := 0.0
			for m := 0; m < M; m++ {
				sum += gr.y[m][f] - mu[m]
			}
			mean := (sum / sigma2) / prec
			b[f] = mean + rng.NormFloat64()/math.Sqrt(prec)
		}

		// The likelihood only identifies mu[m] + b[f] up to a shared
		// shift. Recenter the fold effects to sum to zero each
		// iteration so mu does not random-walk along that ridge.
		bMean := 0.0
		for f := 0; f < F; f++ {
			bMean += b[f]
		}
		bMean /= float64(F)
		for f := 0; f < F; f++ {
			b[f] -= bMean
		}
		for m := 0; m < M; m++ {
			mu[m] += bMean
		}

		// Residual variance
		rss := 0.0
		for m := 0; m < M; m++ {
			for f := 0; f < F; f++ {
				r := gr.y[m][f] - mu[m] - b[f]
				rss += r * r
			}
		}
		sigma2 = invGamma(rng, a0+float64(M*F)/2, r0+rss/2)

		// Fold-effect variance
		bss := 0.0
		for f := 0; f < F; f++ {
			bss += b[f] * b[f]
		}
		tau2 = invGamma(rng, a0+float64(F)/2, r0+bss/2)

		if it >= burnIn {
			for m := 0; m < M; m++ {
				out[m] = append(out[m], mu[m])
			}
		}
	}
	return out
}

func pooledVariance(y [][]float64, mu []float64) float64 {
	n := 0
	ss := 0.0
	for m := range y {
		for _, v := range y[m] {
			d := v - mu[m]
			ss += d * d
			n++
		}
	}
	if n < 2 {
		return 0
	}
	return ss / float64(n-1)
}

// invGamma draws from InverseGamma(shape, rate): the reciprocal of a
// Gamma(shape, rate) draw.
func invGamma(rng *rand.Rand, shape, rate float64) float64 {
	g := randGamma(rng, shape, rate)
	if g <= 0 {
		return math.MaxFloat64
	}
	return 1 / g
}

// randGamma draws from Gamma(shape, rate) using the Marsaglia-Tsang
// squeeze method, with the standard shape<1 boost.
func randGamma(rng *rand.Rand, shape, rate float64) float64 {
	if shape < 1 {
		// Gamma(a) = Gamma(a+1) * U^(1/a)
		u := rng.Float64()
		return randGamma(rng, shape+1, rate) * math.Pow(u, 1/shape)
	}

	d := shape - 1.0/3.0
	c := 1 / math.Sqrt(9*d)
	for {
		var x, v float64
		for {
			x = rng.NormFloat64()
			v = 1 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := rng.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v / rate
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v / rate
		}
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func indexOf(ids []string) map[string]int {
	idx := make(map[string]int, len(ids))
	for i, id := range ids {
		idx[id] = i
	}
	return idx
}
