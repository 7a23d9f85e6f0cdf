package derive_test

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/starkandwayne/passlite/derive"
)

type stretchFunc func(secret, salt []byte, iterations, size int) ([]byte, error)

func (f stretchFunc) Stretch(secret, salt []byte, iterations, size int) ([]byte, error) {
	return f(secret, salt, iterations, size)
}

// countingStretcher records how often, and with what, it was called.
type countingStretcher struct {
	mut        sync.Mutex
	calls      int
	iterations []int
	salts      []string
	next       derive.Stretcher
}

func (c *countingStretcher) Stretch(secret, salt []byte, iterations, size int) ([]byte, error) {
	c.mut.Lock()
	c.calls++
	c.iterations = append(c.iterations, iterations)
	c.salts = append(c.salts, hex.EncodeToString(salt))
	c.mut.Unlock()
	return c.next.Stretch(secret, salt, iterations, size)
}

func scenario() derive.Request {
	return derive.Request{
		Site:         "example.com",
		Login:        "user@example.com",
		MasterSecret: []byte("correct horse"),
		Length:       16,
		Counter:      1,
		Classes:      []derive.Class{derive.Lower, derive.Upper, derive.Digits},
		Symbols:      derive.ModernSymbols,
	}
}

var _ = Describe("Derive", func() {
	Describe("with the example.com scenario", func() {
		var (
			req derive.Request
			pw  string
			err error
		)

		BeforeEach(func() {
			req = scenario()
		})

		JustBeforeEach(func() {
			pw, err = derive.Password(req)
		})

		It("produces the known password", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(pw).To(Equal("@%F6t#2$,J@UioNd"))
		})

		It("covers every requested class", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(pw).To(HaveLen(16))
			Expect(strings.ContainsAny(pw, derive.Lower.Chars())).To(BeTrue())
			Expect(strings.ContainsAny(pw, derive.Upper.Chars())).To(BeTrue())
			Expect(strings.ContainsAny(pw, derive.Digits.Chars())).To(BeTrue())
			Expect(strings.ContainsAny(pw, derive.ModernSymbols.Chars())).To(BeTrue())
		})

		It("is reproducible", func() {
			again, err := derive.Password(scenario())
			Expect(err).NotTo(HaveOccurred())
			Expect(again).To(Equal(pw))
		})

		It("leaves the caller's master secret alone", func() {
			Expect(string(req.MasterSecret)).To(Equal("correct horse"))
		})

		Context("with the counter bumped", func() {
			BeforeEach(func() {
				req.Counter = 2
			})

			It("produces a different known password", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(pw).To(Equal("$9K4xln@TvU-(##0"))
			})
		})

		Context("with only digits and basic symbols", func() {
			BeforeEach(func() {
				req.Length = 20
				req.Classes = []derive.Class{derive.Digits}
				req.Symbols = derive.BasicSymbols
			})

			It("produces the known password", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(pw).To(Equal("10^7@7*^1(*86%642@9$"))
			})
		})

		Context("with upper before lower and no symbols", func() {
			BeforeEach(func() {
				req.Length = 8
				req.Classes = []derive.Class{derive.Upper, derive.Lower}
				req.Symbols = derive.NoSymbols
			})

			It("produces the known password", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(pw).To(Equal("vLfOggQp"))
			})
		})
	})

	Describe("sensitivity", func() {
		var base string

		BeforeEach(func() {
			var err error
			base, err = derive.Password(scenario())
			Expect(err).NotTo(HaveOccurred())
		})

		type change struct {
			desc  string
			apply func(*derive.Request)
		}
		changes := []change{
			{"the site", func(r *derive.Request) { r.Site = "example.org" }},
			{"the login", func(r *derive.Request) { r.Login = "admin@example.com" }},
			{"the master secret", func(r *derive.Request) { r.MasterSecret = []byte("correct horsf") }},
			{"the length", func(r *derive.Request) { r.Length = 17 }},
			{"the counter", func(r *derive.Request) { r.Counter = 2 }},
			{"the class order", func(r *derive.Request) { r.Classes = []derive.Class{derive.Digits, derive.Upper, derive.Lower} }},
			{"the symbol policy", func(r *derive.Request) { r.Symbols = derive.BasicSymbols }},
		}

		for i := range changes {
			c := changes[i]
			It(fmt.Sprintf("changes when %s changes", c.desc), func() {
				req := scenario()
				c.apply(&req)
				pw, err := derive.Password(req)
				Expect(err).NotTo(HaveOccurred())
				Expect(pw).NotTo(Equal(base))
			})
		}

		It("changes both salt and iteration count with the counter", func() {
			s := &countingStretcher{next: derive.PBKDF2{}}
			d := &derive.Deriver{Stretcher: s}
			for _, counter := range []int{1, 2} {
				req := scenario()
				req.Counter = counter
				_, err := d.Derive(req)
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(s.iterations).To(Equal([]int{100001, 100002}))
			Expect(s.salts[0]).NotTo(Equal(s.salts[1]))
		})
	})

	Describe("class coverage and containment", func() {
		type config struct {
			classes []derive.Class
			symbols derive.SymbolPolicy
			length  int
		}
		configs := []config{
			{[]derive.Class{derive.Lower}, derive.NoSymbols, 1},
			{nil, derive.BasicSymbols, 4},
			{[]derive.Class{derive.Digits, derive.Lower}, derive.ModernSymbols, 3},
			{[]derive.Class{derive.Upper}, derive.BasicSymbols, 32},
			{[]derive.Class{derive.Lower, derive.Upper, derive.Digits}, derive.ModernSymbols, derive.MaxLength},
		}

		for i := range configs {
			c := configs[i]
			It(fmt.Sprintf("holds for %v with %s symbols at length %d", c.classes, c.symbols, c.length), func() {
				for counter := 1; counter <= 2; counter++ {
					req := scenario()
					req.Classes, req.Symbols, req.Length, req.Counter = c.classes, c.symbols, c.length, counter

					pw, err := derive.Password(req)
					Expect(err).NotTo(HaveOccurred())
					Expect(pw).To(HaveLen(c.length))

					alphabet := derive.Alphabet(c.classes, c.symbols)
					for _, ch := range pw {
						Expect(alphabet).To(ContainSubstring(string(ch)))
					}
					for _, cls := range c.classes {
						Expect(strings.ContainsAny(pw, cls.Chars())).To(BeTrue(), "missing %s in %q", cls, pw)
					}
					if c.symbols != derive.NoSymbols {
						Expect(strings.ContainsAny(pw, c.symbols.Chars())).To(BeTrue(), "missing symbol in %q", pw)
					}
				}
			})
		}
	})

	Describe("rejection", func() {
		var stretcher *countingStretcher
		var d *derive.Deriver

		BeforeEach(func() {
			stretcher = &countingStretcher{next: derive.PBKDF2{}}
			d = &derive.Deriver{Stretcher: stretcher}
		})

		type bad struct {
			desc  string
			apply func(*derive.Request)
		}
		bads := []bad{
			{"a zero length", func(r *derive.Request) { r.Length = 0 }},
			{"a negative length", func(r *derive.Request) { r.Length = -5 }},
			{"a length of 129", func(r *derive.Request) { r.Length = 129 }},
			{"a zero counter", func(r *derive.Request) { r.Counter = 0 }},
			{"no classes and no symbols", func(r *derive.Request) { r.Classes, r.Symbols = nil, derive.NoSymbols }},
			{"duplicate classes", func(r *derive.Request) { r.Classes = []derive.Class{derive.Lower, derive.Upper, derive.Lower} }},
			{"a length shorter than the required classes", func(r *derive.Request) { r.Length = 3 }},
			{"an unknown class", func(r *derive.Request) { r.Classes = []derive.Class{"hex"} }},
			{"an unknown symbol policy", func(r *derive.Request) { r.Symbols = "emoji" }},
		}

		for i := range bads {
			b := bads[i]
			It(fmt.Sprintf("refuses %s before stretching", b.desc), func() {
				req := scenario()
				b.apply(&req)
				_, err := d.Derive(req)
				Expect(err).To(HaveOccurred())
				Expect(derive.IsInvalidConfiguration(err)).To(BeTrue())
				Expect(derive.IsInsufficientEntropy(err)).To(BeFalse())
				Expect(stretcher.calls).To(Equal(0))
			})
		}

		It("accepts the maximum length", func() {
			req := scenario()
			req.Length = derive.MaxLength
			_, err := d.Derive(req)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("crypto backend failures", func() {
		It("surfaces stretcher errors verbatim", func() {
			d := &derive.Deriver{Stretcher: stretchFunc(func(_, _ []byte, _, _ int) ([]byte, error) {
				return nil, errors.New("no entropy source")
			})}
			_, err := d.Derive(scenario())
			Expect(derive.IsCryptoBackendError(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("no entropy source"))
			Expect(errors.Unwrap(err)).To(MatchError("no entropy source"))
		})

		It("refuses a short pool", func() {
			d := &derive.Deriver{Stretcher: stretchFunc(func(_, _ []byte, _, size int) ([]byte, error) {
				return make([]byte, size-1), nil
			})}
			_, err := d.Derive(scenario())
			Expect(derive.IsCryptoBackendError(err)).To(BeTrue())
		})

		It("has PBKDF2 reject nonsense parameters", func() {
			_, err := derive.PBKDF2{}.Stretch([]byte("x"), []byte("salt"), 0, 10)
			Expect(err).To(HaveOccurred())
			_, err = derive.PBKDF2{}.Stretch([]byte("x"), []byte("salt"), 1, 0)
			Expect(err).To(HaveOccurred())
			_, err = derive.PBKDF2{}.Stretch([]byte("x"), nil, 1, 10)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("DeriveContext", func() {
		It("returns the same password as Derive", func() {
			pw, err := derive.Default.DeriveContext(context.Background(), scenario())
			Expect(err).NotTo(HaveOccurred())
			Expect(pw).To(Equal("@%F6t#2$,J@UioNd"))
		})

		It("gives up when the context expires", func() {
			release := make(chan struct{})
			d := &derive.Deriver{Stretcher: stretchFunc(func(secret, salt []byte, iterations, size int) ([]byte, error) {
				<-release
				return derive.PBKDF2{}.Stretch(secret, salt, 1, size)
			})}
			defer close(release)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
			defer cancel()
			_, err := d.DeriveContext(ctx, scenario())
			Expect(err).To(MatchError(context.DeadlineExceeded))
		})

		It("still validates first", func() {
			req := scenario()
			req.Counter = 0
			_, err := derive.Default.DeriveContext(context.Background(), req)
			Expect(derive.IsInvalidConfiguration(err)).To(BeTrue())
		})
	})

	Describe("Batch", func() {
		var fast derive.Stretcher = stretchFunc(func(secret, salt []byte, _, size int) ([]byte, error) {
			return derive.PBKDF2{}.Stretch(secret, salt, 1, size)
		})

		It("matches one-at-a-time derivation, in order", func() {
			d := &derive.Deriver{Stretcher: fast}
			reqs := make([]derive.Request, 0)
			for _, site := range []string{"a.example", "b.example", "c.example", "d.example", "e.example"} {
				req := scenario()
				req.Site = site
				reqs = append(reqs, req)
			}

			out, err := d.Batch(context.Background(), reqs, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(HaveLen(len(reqs)))
			for i, req := range reqs {
				pw, err := d.Derive(req)
				Expect(err).NotTo(HaveOccurred())
				Expect(out[i]).To(Equal(pw))
			}
		})

		It("validates every entry before stretching anything", func() {
			s := &countingStretcher{next: fast}
			d := &derive.Deriver{Stretcher: s}
			good, bad := scenario(), scenario()
			bad.Site, bad.Length = "bad.example", 0

			_, err := d.Batch(context.Background(), []derive.Request{good, bad}, 2)
			Expect(derive.IsInvalidConfiguration(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("entry #2 (bad.example)"))
			Expect(s.calls).To(Equal(0))
		})
	})

	Describe("Plan", func() {
		It("describes the derivation without a secret", func() {
			req := scenario()
			req.MasterSecret = nil
			plan, err := derive.Default.Plan(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(plan.Alphabet).To(HaveLen(26 + 26 + 10 + 25))
			Expect(plan.Guaranteed).To(Equal(4))
			Expect(plan.Iterations).To(Equal(100001))
			Expect(plan.PoolSize).To(Equal(141))
			Expect(hex.EncodeToString(plan.Salt)).To(Equal("287ef354058b535accdda2a04bbf2b614c1f77cfbfb5096d8767bc95ba2125b2"))
			Expect(plan.EntropyBits()).To(BeNumerically("~", 94.68, 0.01))
		})

		It("treats an empty symbol policy as none", func() {
			req := scenario()
			req.Symbols = ""
			plan, err := derive.Default.Plan(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(plan.Symbols).To(Equal(derive.NoSymbols))
			Expect(plan.Guaranteed).To(Equal(3))
		})
	})
})

var _ = Describe("Parameters", func() {
	It("separates site and login with a delimiter", func() {
		a := derive.Salt(nil, "example", "com", 16, 1)
		b := derive.Salt(nil, "ex", "amplecom", 16, 1)
		Expect(a).To(HaveLen(32))
		Expect(a).NotTo(Equal(b))
	})

	It("bounds the iteration count", func() {
		Expect(derive.Iterations(1)).To(Equal(100001))
		Expect(derive.Iterations(899999)).To(Equal(999999))
		Expect(derive.Iterations(900000)).To(Equal(1000000))
		Expect(derive.Iterations(5000000)).To(Equal(1000000))
		Expect(derive.Iterations(int(^uint(0) >> 1))).To(Equal(1000000))
	})

	It("sizes the pool at ceil(2.8 * length) + 96", func() {
		Expect(derive.PoolSize(1)).To(Equal(99))
		Expect(derive.PoolSize(5)).To(Equal(110))
		Expect(derive.PoolSize(10)).To(Equal(124))
		Expect(derive.PoolSize(16)).To(Equal(141))
		Expect(derive.PoolSize(128)).To(Equal(455))
	})

	It("builds alphabets in the order asked for", func() {
		Expect(derive.Alphabet([]derive.Class{derive.Digits, derive.Lower}, derive.BasicSymbols)).
			To(Equal("0123456789abcdefghijklmnopqrstuvwxyz!@#$%^&*()"))
		Expect(derive.Alphabet(nil, derive.ModernSymbols)).To(Equal("!#$%&()*+,-./:;=?@[]^_{}~"))
		Expect(derive.Alphabet([]derive.Class{derive.Upper}, derive.NoSymbols)).To(Equal("ABCDEFGHIJKLMNOPQRSTUVWXYZ"))
	})

	It("parses class lists", func() {
		cc, err := derive.ParseClasses(" lower, UPPER ,digits,")
		Expect(err).NotTo(HaveOccurred())
		Expect(cc).To(Equal([]derive.Class{derive.Lower, derive.Upper, derive.Digits}))
		Expect(derive.JoinClasses(cc)).To(Equal("lower,upper,digits"))

		_, err = derive.ParseClasses("lower,hex")
		Expect(derive.IsInvalidConfiguration(err)).To(BeTrue())
	})

	It("parses symbol policies", func() {
		p, err := derive.ParseSymbolPolicy("Modern")
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(Equal(derive.ModernSymbols))

		p, err = derive.ParseSymbolPolicy("")
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(Equal(derive.NoSymbols))

		_, err = derive.ParseSymbolPolicy("fancy")
		Expect(derive.IsInvalidConfiguration(err)).To(BeTrue())
	})
})
