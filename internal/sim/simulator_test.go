package sim_test

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/HarryCaveMan/gillespy/internal/crn"
	"github.com/HarryCaveMan/gillespy/internal/sim"
)

func decay(initial int64, k float64) *crn.Model {
	m, err := crn.NewModel("decay", 1)
	Expect(err).NotTo(HaveOccurred())
	x, err := crn.NewSpecies("X", initial)
	Expect(err).NotTo(HaveOccurred())
	r, err := crn.NewMassAction("X decay", crn.Stoichiometry{"X": 1}, nil, "k")
	Expect(err).NotTo(HaveOccurred())

	Expect(m.AddSpecies(x)).To(Succeed())
	Expect(m.AddParameter(crn.NewValueParameter("k", k))).To(Succeed())
	Expect(m.AddReaction(r)).To(Succeed())
	return m
}

func compiled(m *crn.Model) *crn.Model {
	_, err := m.Compile()
	Expect(err).NotTo(HaveOccurred())
	return m
}

func custom(propensity string) *crn.Model {
	m, err := crn.NewModel("custom", 1)
	Expect(err).NotTo(HaveOccurred())
	x, _ := crn.NewSpecies("X", 5)
	r, err := crn.NewCustom("bad", nil, crn.Stoichiometry{"X": 1}, propensity)
	Expect(err).NotTo(HaveOccurred())
	Expect(m.AddSpecies(x)).To(Succeed())
	Expect(m.AddReaction(r)).To(Succeed())
	return compiled(m)
}

// randomNetwork builds a small random mass-action network.
func randomNetwork(rng *rand.Rand) *crn.Model {
	m, err := crn.NewModel("random", 1+rng.Float64()*4)
	Expect(err).NotTo(HaveOccurred())

	numSpecies := 1 + rng.IntN(3)
	names := make([]string, numSpecies)
	for i := range names {
		names[i] = fmt.Sprintf("S%d", i)
		s, err := crn.NewSpecies(names[i], int64(rng.IntN(6)))
		Expect(err).NotTo(HaveOccurred())
		Expect(m.AddSpecies(s)).To(Succeed())
	}
	Expect(m.AddParameter(crn.NewValueParameter("k", 0.5+rng.Float64()*2))).To(Succeed())

	side := func(maxTerms int) crn.Stoichiometry {
		st := crn.Stoichiometry{}
		for n := rng.IntN(maxTerms + 1); n > 0; n-- {
			st[names[rng.IntN(numSpecies)]] += 1 + rng.IntN(2)
		}
		return st
	}

	for i := 0; i < 1+rng.IntN(4); i++ {
		r, err := crn.NewMassAction(fmt.Sprintf("r%d", i), side(2), side(2), "k")
		Expect(err).NotTo(HaveOccurred())
		Expect(m.AddReaction(r)).To(Succeed())
	}
	return compiled(m)
}

var _ = Describe("Simulate", func() {
	ctx := context.Background()

	Describe("trajectory shape", func() {
		It("starts at t=0 with initial populations and ends at the end time", func() {
			m := compiled(decay(10, 1.0))
			res, err := sim.Simulate(ctx, m, sim.Config{Trajectories: 1, EndTime: 5, Seed: sim.Seed(42)})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Trajectories).To(HaveLen(1))

			traj := res.Trajectories[0]
			Expect(traj.Times[0]).To(Equal(0.0))
			Expect(traj.States[0]).To(Equal(sim.State{10}))
			Expect(traj.EndTime()).To(Equal(5.0))
			Expect(traj.Species).To(Equal([]string{"X"}))
		})

		It("keeps times strictly increasing and X non-increasing for decay", func() {
			m := compiled(decay(10, 1.0))
			res, err := sim.Simulate(ctx, m, sim.Config{Trajectories: 20, EndTime: 5, Seed: sim.Seed(42)})
			Expect(err).NotTo(HaveOccurred())

			for _, traj := range res.Trajectories {
				for i := 1; i < traj.Len(); i++ {
					Expect(traj.Times[i]).To(BeNumerically(">", traj.Times[i-1]))
					Expect(traj.States[i][0]).To(BeNumerically("<=", traj.States[i-1][0]))
				}
				Expect(int64(traj.Events)).To(Equal(10 - traj.Final()[0]))
				Expect(traj.Firings[0]).To(Equal(int64(traj.Events)))
			}
		})

		It("never produces negative populations", func() {
			rng := rand.New(rand.NewPCG(7, 11))
			for n := 0; n < 40; n++ {
				m := randomNetwork(rng)
				res, err := sim.Simulate(ctx, m, sim.Config{
					Trajectories: 5, EndTime: 3, MaxEvents: 5000, Seed: sim.Seed(int64(n)),
				})
				Expect(err).NotTo(HaveOccurred())
				for _, traj := range res.Trajectories {
					for _, s := range traj.States {
						Expect(s.IsValid()).To(BeTrue(), "negative population in %v", s)
					}
				}
			}
		})
	})

	Describe("reproducibility", func() {
		It("is identical for identical seeds", func() {
			m := compiled(decay(50, 0.3))
			cfg := sim.Config{Trajectories: 8, EndTime: 10, Seed: sim.Seed(1234), Workers: 3}

			a, err := sim.Simulate(ctx, m, cfg)
			Expect(err).NotTo(HaveOccurred())
			b, err := sim.Simulate(ctx, m, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(a.Trajectories).To(Equal(b.Trajectories))
		})

		It("does not change earlier trajectories when more are requested", func() {
			m := compiled(decay(50, 0.3))

			small, err := sim.Simulate(ctx, m, sim.Config{Trajectories: 3, EndTime: 10, Seed: sim.Seed(99)})
			Expect(err).NotTo(HaveOccurred())
			large, err := sim.Simulate(ctx, m, sim.Config{Trajectories: 10, EndTime: 10, Seed: sim.Seed(99), Workers: 4})
			Expect(err).NotTo(HaveOccurred())

			for i := range small.Trajectories {
				Expect(large.Trajectories[i]).To(Equal(small.Trajectories[i]))
			}
		})

		It("matches a single run with the derived seed", func() {
			m := compiled(decay(50, 0.3))
			c, _ := m.Compiled()

			res, err := sim.Simulate(ctx, m, sim.Config{Trajectories: 4, EndTime: 10, Seed: sim.Seed(5)})
			Expect(err).NotTo(HaveOccurred())

			single, err := sim.New(c, sim.NewDirect()).Run(ctx, 2, sim.TrajectorySeed(5, 2), sim.Config{EndTime: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(single).To(Equal(res.Trajectories[2]))
		})

		It("reports a drawn seed that reproduces the run", func() {
			m := compiled(decay(20, 1))
			a, err := sim.Simulate(ctx, m, sim.Config{Trajectories: 2, EndTime: 3})
			Expect(err).NotTo(HaveOccurred())

			b, err := sim.Simulate(ctx, m, sim.Config{Trajectories: 2, EndTime: 3, Seed: sim.Seed(a.Seed)})
			Expect(err).NotTo(HaveOccurred())
			Expect(b.Trajectories).To(Equal(a.Trajectories))
		})
	})

	Describe("absorbing states", func() {
		It("holds a zero population flat without error", func() {
			m := compiled(decay(0, 1))
			res, err := sim.Simulate(ctx, m, sim.Config{Trajectories: 1, EndTime: 5, Seed: sim.Seed(1)})
			Expect(err).NotTo(HaveOccurred())

			traj := res.Trajectories[0]
			Expect(traj.Times).To(Equal([]float64{0, 5}))
			Expect(traj.States).To(Equal([]sim.State{{0}, {0}}))
			Expect(traj.Absorbed).To(BeTrue())
			Expect(traj.AbsorbedAt).To(Equal(0.0))
			Expect(traj.Events).To(BeZero())
		})

		It("decays to zero and then holds until the end time", func() {
			m := compiled(decay(5, 10))
			res, err := sim.Simulate(ctx, m, sim.Config{Trajectories: 1, EndTime: 100, Seed: sim.Seed(3)})
			Expect(err).NotTo(HaveOccurred())

			traj := res.Trajectories[0]
			Expect(traj.Absorbed).To(BeTrue())
			Expect(traj.Events).To(Equal(5))
			Expect(traj.Final()).To(Equal(sim.State{0}))
			Expect(traj.EndTime()).To(Equal(100.0))
			Expect(traj.AbsorbedAt).To(Equal(traj.Times[traj.Len()-2]))
		})
	})

	Describe("exponential decay statistics", func() {
		for _, method := range sim.Methods() {
			It("matches 10·e^-5 at t=5 with "+method, func() {
				m := compiled(decay(10, 1.0))
				res, err := sim.Simulate(ctx, m, sim.Config{
					Trajectories: 1000, EndTime: 5, Seed: sim.Seed(42), Method: method,
				})
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Method).To(Equal(method))

				sum := 0.0
				for _, traj := range res.Trajectories {
					x, ok := traj.At(5)
					Expect(ok).To(BeTrue())
					sum += float64(x[0])
				}
				Expect(sum / 1000).To(BeNumerically("~", 10*math.Exp(-5), 0.04))
			})
		}

		It("scales birth-death steady state with volume", func() {
			m, _ := crn.NewModel("birth-death", 2)
			x, _ := crn.NewSpecies("X", 0)
			birth, _ := crn.NewMassAction("birth", nil, crn.Stoichiometry{"X": 1}, "kb")
			death, _ := crn.NewMassAction("death", crn.Stoichiometry{"X": 1}, nil, "kd")
			Expect(m.AddSpecies(x)).To(Succeed())
			Expect(m.AddParameter(crn.NewValueParameter("kb", 10), crn.NewValueParameter("kd", 1))).To(Succeed())
			Expect(m.AddReaction(birth, death)).To(Succeed())
			compiled(m)

			res, err := sim.Simulate(ctx, m, sim.Config{Trajectories: 400, EndTime: 20, Seed: sim.Seed(8)})
			Expect(err).NotTo(HaveOccurred())

			sum := 0.0
			for _, traj := range res.Trajectories {
				sum += float64(traj.Final()[0])
			}
			// Poisson(kb*V/kd) = Poisson(20); standard error of the mean is ~0.22
			Expect(sum / 400).To(BeNumerically("~", 20, 1.2))
		})
	})

	Describe("event bound", func() {
		It("truncates at MaxEvents without padding", func() {
			m := compiled(decay(100, 1))
			res, err := sim.Simulate(ctx, m, sim.Config{Trajectories: 1, EndTime: 1000, MaxEvents: 7, Seed: sim.Seed(2)})
			Expect(err).NotTo(HaveOccurred())

			traj := res.Trajectories[0]
			Expect(traj.Truncated).To(BeTrue())
			Expect(traj.Events).To(Equal(7))
			Expect(traj.Len()).To(Equal(8))
			Expect(traj.EndTime()).To(BeNumerically("<", 1000))
		})
	})

	Describe("errors", func() {
		It("rejects models that were never compiled", func() {
			_, err := sim.Simulate(ctx, decay(10, 1), sim.Config{Trajectories: 1, EndTime: 1})
			Expect(err).To(MatchError(sim.ErrInvalidModel))
			Expect(err).To(MatchError(crn.ErrNotCompiled))
		})

		It("rejects stale models", func() {
			m := compiled(decay(10, 1))
			y, _ := crn.NewSpecies("Y", 0)
			Expect(m.AddSpecies(y)).To(Succeed())

			_, err := sim.Simulate(ctx, m, sim.Config{Trajectories: 1, EndTime: 1})
			Expect(err).To(MatchError(sim.ErrInvalidModel))
			Expect(err).To(MatchError(crn.ErrStaleModel))
		})

		DescribeTable("rejects invalid configuration",
			func(cfg sim.Config) {
				_, err := sim.Simulate(ctx, compiled(decay(10, 1)), cfg)
				Expect(err).To(MatchError(sim.ErrInvalidConfiguration))
			},
			Entry("zero trajectories", sim.Config{Trajectories: 0, EndTime: 1}),
			Entry("zero end time", sim.Config{Trajectories: 1, EndTime: 0}),
			Entry("negative end time", sim.Config{Trajectories: 1, EndTime: -1}),
			Entry("NaN end time", sim.Config{Trajectories: 1, EndTime: math.NaN()}),
			Entry("infinite end time", sim.Config{Trajectories: 1, EndTime: math.Inf(1)}),
			Entry("negative max events", sim.Config{Trajectories: 1, EndTime: 1, MaxEvents: -1}),
			Entry("negative workers", sim.Config{Trajectories: 1, EndTime: 1, Workers: -2}),
			Entry("unknown method", sim.Config{Trajectories: 1, EndTime: 1, Method: "tau-leaping"}),
		)

		DescribeTable("surfaces bad propensities",
			func(propensity string) {
				res, err := sim.Simulate(ctx, custom(propensity), sim.Config{Trajectories: 2, EndTime: 1000, Seed: sim.Seed(1)})
				Expect(err).To(MatchError(sim.ErrNonFiniteRate))

				var simErr *sim.SimulationError
				Expect(err).To(BeAssignableToTypeOf(simErr))
				Expect(err.Error()).To(ContainSubstring(`"bad"`))
				Expect(res).NotTo(BeNil())
			},
			Entry("negative", "-1"),
			Entry("negative once populated", "8.5 - X"),
			Entry("NaN", "0/0"),
			Entry("infinite", "1/(X-5)"),
		)
	})

	Describe("cancellation", func() {
		It("stops a canceled batch", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			res, err := sim.Simulate(cctx, compiled(decay(1000, 1)), sim.Config{Trajectories: 50, EndTime: 100, Seed: sim.Seed(1)})
			Expect(err).To(MatchError(context.Canceled))
			Expect(res.Completed()).To(BeEmpty())
		})
	})
})
