// Package demo generates realistic bank notification corpora for seeding
// and exercising the assembly pipeline without real message access.
package demo

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// Message is one synthetic notification as a delivery would present it.
type Message struct {
	SentAt time.Time
	Raw    string
	Sender string
}

type bank struct {
	sender string
	name   string
}

var banks = []bank{
	{"AD-ICICIB", "ICICI Bank"},
	{"VM-HDFCBK", "HDFC Bank"},
	{"BZ-SBIINB", "SBI"},
	{"JD-AXISBK", "AXIS Bank"},
	{"VK-KOTAKB", "KOTAK Bank"},
}

var merchants = []string{
	"Swiggy", "Zomato", "Amazon", "Flipkart", "Uber", "Ola",
	"BigBasket", "Netflix", "BookMyShow", "Myntra", "Apollo Pharmacy",
	"Reliance Digital", "IRCTC", "Jio", "Airtel",
}

var billers = []string{
	"BESCOM electricity", "Airtel broadband", "Jio postpaid", "Tata Power",
}

// Generator produces a reproducible stream of synthetic notifications.
type Generator struct {
	faker *gofakeit.Faker
	now   time.Time
}

// NewGenerator creates a generator seeded for reproducible output, with
// message timestamps spread backwards from now.
func NewGenerator(seed uint64, now time.Time) *Generator {
	return &Generator{
		faker: gofakeit.New(seed),
		now:   now.UTC(),
	}
}

// Messages generates n notifications spread over roughly the trailing 90
// days, oldest first. Most are financial; a few are promotional noise so
// the pipeline's gate gets exercised too.
func (g *Generator) Messages(n int) []Message {
	msgs := make([]Message, 0, n)
	for i := 0; i < n; i++ {
		daysBack := 90 * (n - i) / (n + 1)
		sentAt := g.now.AddDate(0, 0, -daysBack).
			Add(time.Duration(g.faker.IntRange(8, 22)) * time.Hour).
			Add(time.Duration(g.faker.IntRange(0, 59)) * time.Minute)

		msgs = append(msgs, g.message(sentAt, i))
	}
	return msgs
}

func (g *Generator) message(sentAt time.Time, seq int) Message {
	b := banks[g.faker.IntRange(0, len(banks)-1)]
	tail := fmt.Sprintf("%04d", g.faker.IntRange(1000, 9999))

	// Roughly one message in ten is noise; one in twelve is a credit.
	switch {
	case seq%10 == 9:
		return Message{
			SentAt: sentAt,
			Sender: "VM-PROMOS",
			Raw: fmt.Sprintf("Exclusive offer for you! Get %d%% off on your next order. T&C apply.",
				g.faker.IntRange(10, 60)),
		}
	case seq%12 == 11:
		amount := float64(g.faker.IntRange(35, 85)) * 1000
		return Message{
			SentAt: sentAt,
			Sender: b.sender,
			Raw: fmt.Sprintf("Rs.%.2f credited to your A/c XX%s on %s by NEFT salary from %s. Avl Bal Rs.%.2f",
				amount, tail, sentAt.Format("02-Jan-06"), g.faker.Company(), amount+g.faker.Float64Range(5000, 90000)),
		}
	default:
		return g.expense(sentAt, b, tail)
	}
}

func (g *Generator) expense(sentAt time.Time, b bank, tail string) Message {
	switch g.faker.IntRange(0, 3) {
	case 0: // card purchase
		merchant := merchants[g.faker.IntRange(0, len(merchants)-1)]
		amount := g.faker.Float64Range(99, 4999)
		return Message{
			SentAt: sentAt,
			Sender: b.sender,
			Raw: fmt.Sprintf("Rs.%.2f debited from A/c XX%s on %s at %s. Avl Bal Rs.%.2f. Ref %s%d",
				amount, tail, sentAt.Format("02-Jan-06"), merchant,
				g.faker.Float64Range(5000, 80000), "TXN", g.faker.IntRange(100000, 999999)),
		}
	case 1: // UPI payment
		merchant := merchants[g.faker.IntRange(0, len(merchants)-1)]
		amount := g.faker.Float64Range(49, 1999)
		return Message{
			SentAt: sentAt,
			Sender: b.sender,
			Raw: fmt.Sprintf("Rs.%.2f paid via UPI from A/c XX%s to %s on %s at %s. UPI Ref %d",
				amount, tail, merchant, sentAt.Format("02-Jan-06"), sentAt.Format("15:04"),
				g.faker.IntRange(100000000, 999999999)),
		}
	case 2: // ATM withdrawal
		amount := float64(g.faker.IntRange(1, 10)) * 500
		return Message{
			SentAt: sentAt,
			Sender: b.sender,
			Raw: fmt.Sprintf("Rs.%.2f withdrawn from A/c XX%s at %s ATM on %s. Avl Bal Rs.%.2f",
				amount, tail, b.name, sentAt.Format("02-Jan-06"), g.faker.Float64Range(5000, 80000)),
		}
	default: // bill payment
		biller := billers[g.faker.IntRange(0, len(billers)-1)]
		amount := g.faker.Float64Range(299, 3499)
		return Message{
			SentAt: sentAt,
			Sender: b.sender,
			Raw: fmt.Sprintf("Payment of Rs.%.2f made towards %s bill from A/c XX%s on %s. Ref %d",
				amount, biller, tail, sentAt.Format("02-Jan-06"), g.faker.IntRange(10000000, 99999999)),
		}
	}
}
