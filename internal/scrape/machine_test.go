package scrape

import (
	"context"
	"testing"
	"time"

	"github.com/quote-harvest/termquote/pkg/models"
)

func testProfile() models.Profile {
	return models.Profile{
		FullName:     "Test Person",
		FirstName:    "Test",
		MiddleName:   "Q",
		LastName:     "Person",
		DateOfBirth:  "01/01/1990",
		Phone:        "9999999999",
		Email:        "test@example.com",
		AnnualIncome: "500000",
		Pincode:      "110001",
	}
}

// testMachineConfig uses short synthetic selectors so journeys can be
// wired up against fakeSession without the production chains.
func testMachineConfig(p models.Profile) MachineConfig {
	return MachineConfig{
		Variants: []Variant{
			{
				Name: "lead",
				Steps: []FormStep{
					{Name: "name", Chain: SelectorChain{"#name"}, Op: OpFill, Value: p.FullName},
					{Name: "dob", Chain: SelectorChain{"#dob"}, Op: OpFill, Value: p.DateOfBirth},
				},
				Submit: SelectorChain{"#submitLead"},
			},
			{
				Name: "grid",
				Steps: []FormStep{
					{Name: "choice", Chain: SelectorChain{"#choice"}, Op: OpClick},
				},
				Submit: SelectorChain{"#submitGrid"},
			},
		},
		Activation:    DefaultActivation(),
		StepTimeout:   5 * time.Millisecond,
		ProbeTimeout:  5 * time.Millisecond,
		SettleTimeout: 5 * time.Millisecond,
		Modal: ModalChains{
			Probe:      SelectorChain{"#modal"},
			Gender:     SelectorChain{"#gender"},
			Tobacco:    SelectorChain{"#tobacco"},
			Occupation: SelectorChain{"#occupation"},
			Education:  SelectorChain{"#education"},
			Submit:     SelectorChain{"#modalGo"},
		},
		Coverage: CoverageChains{
			Form:      SelectorChain{"#covForm"},
			CoverTill: SelectorChain{"#covTill"},
			Premium:   SelectorChain{"#premium"},
			Proceed:   SelectorChain{"#covGo"},
		},
		RiderPopup: RiderPopupChains{
			Probe:   SelectorChain{"#popup"},
			Proceed: SelectorChain{"#popupGo"},
		},
		Riders: RiderChains{
			Container: SelectorChain{"#riders"},
			Card:      ".card",
			Name:      SelectorChain{".rname"},
			Coverage:  SelectorChain{".rcover"},
			Premium:   SelectorChain{".rpremium"},
			Skip:      SelectorChain{"#ridersGo"},
		},
		Identity: IdentityChains{
			FirstName:  SelectorChain{"#firstName"},
			MiddleName: SelectorChain{"#middleName"},
			LastName:   SelectorChain{"#lastName"},
			Email:      SelectorChain{"#email"},
			Income:     SelectorChain{"#income"},
			Pincode:    SelectorChain{"#pincode"},
			Agreement:  SelectorChain{"#agree"},
			Submit:     SelectorChain{"#idGo"},
			Proceed:    SelectorChain{"#idNext"},
		},
		Quote: QuoteChains{
			Card:           SelectorChain{"#quote"},
			EquoteNumber:   SelectorChain{".equote"},
			PolicyName:     SelectorChain{".policy"},
			LifeCover:      SelectorChain{".cover"},
			CoverTillAge:   SelectorChain{".tillAge"},
			BasePremium:    SelectorChain{".base"},
			AddOnTitles:    ".addon",
			BasePlusAddOns: SelectorChain{".baseAddons"},
			GSTAmount:      SelectorChain{".gst"},
			TotalAmount:    SelectorChain{".total"},
			SecondYear:     SelectorChain{".secondYear"},
		},
		Profile: p,
	}
}

func addRiderCard(container *fakeElement, name, cover, premium string) {
	card := newFakeElement(".card", "")
	card.finds[".rname"] = newFakeElement(".rname", name)
	card.finds[".rcover"] = newFakeElement(".rcover", cover)
	card.finds[".rpremium"] = newFakeElement(".rpremium", premium)
	container.children[".card"] = append(container.children[".card"], card)
}

// journeySession wires a fakeSession for a complete, successful quote
// journey through the lead variant: no demographics modal, two rider
// cards, a full identity form and a populated quote card.
func journeySession() *fakeSession {
	s := newFakeSession()
	s.add("#name", "")
	s.add("#dob", "")
	s.add("#submitLead", "")

	s.add("#covForm", "")
	s.add("#covTill", "")
	s.add("#premium", "₹1,190")
	s.add("#covGo", "")

	riders := s.add("#riders", "")
	addRiderCard(riders, "Accident Cover", "₹50 Lakh", "₹58")
	addRiderCard(riders, "Critical Illness", "₹10 Lakh", "₹112")
	s.add("#ridersGo", "")

	for _, sel := range []string{"#firstName", "#middleName", "#lastName", "#email", "#income", "#pincode", "#agree", "#idGo", "#idNext"} {
		s.add(sel, "")
	}

	quote := s.add("#quote", "")
	quote.finds[".equote"] = newFakeElement(".equote", "EQ-12345")
	quote.finds[".policy"] = newFakeElement(".policy", "Smart Term Plan Plus")
	quote.finds[".cover"] = newFakeElement(".cover", "₹1 Cr")
	quote.finds[".tillAge"] = newFakeElement(".tillAge", "75 years")
	quote.finds[".base"] = newFakeElement(".base", "₹1,190")
	quote.finds[".baseAddons"] = newFakeElement(".baseAddons", "₹1,360")
	quote.finds[".gst"] = newFakeElement(".gst", "₹245")
	quote.finds[".total"] = newFakeElement(".total", "₹1,605")
	quote.finds[".secondYear"] = newFakeElement(".secondYear", "₹1,605")
	quote.children[".addon"] = []*fakeElement{
		newFakeElement(".addon", "Monthly Add-ons"),
		newFakeElement(".addon", "Accident Cover"),
	}
	return s
}

func TestMachineFullJourney(t *testing.T) {
	s := journeySession()
	m := NewMachine(testMachineConfig(testProfile()))
	rec := models.Record{}

	terminal := m.Run(context.Background(), s, rec)
	if terminal != StateDone {
		t.Fatalf("expected StateDone, got %s", terminal)
	}

	if rec[models.FieldMonthlyPremium] != "₹1,190" {
		t.Errorf("expected premium ₹1,190, got %v", rec[models.FieldMonthlyPremium])
	}
	riders, ok := rec[models.FieldAddOnRiders].([]models.Rider)
	if !ok || len(riders) != 2 {
		t.Fatalf("expected 2 riders, got %v", rec[models.FieldAddOnRiders])
	}
	if riders[0].Name != "Accident Cover" || riders[0].Premium != "₹58" {
		t.Errorf("unexpected first rider: %+v", riders[0])
	}

	qd, ok := rec[models.FieldQuoteDetails].(models.QuoteDetails)
	if !ok {
		t.Fatalf("expected quote details, got %v", rec[models.FieldQuoteDetails])
	}
	if qd.TotalAmount != "₹1,605" {
		t.Errorf("expected total ₹1,605, got %s", qd.TotalAmount)
	}
	if len(qd.AddOns) != 1 || qd.AddOns[0] != "Accident Cover" {
		t.Errorf("expected the section header to be filtered from add-ons, got %v", qd.AddOns)
	}
}

func TestMachineFillsProfileValues(t *testing.T) {
	s := journeySession()
	p := testProfile()
	m := NewMachine(testMachineConfig(p))

	m.Run(context.Background(), s, models.Record{})

	name := s.elems["#name"]
	if len(name.fills) != 1 || name.fills[0] != p.FullName {
		t.Errorf("expected full name fill %q, got %v", p.FullName, name.fills)
	}
	first := s.elems["#firstName"]
	if len(first.fills) != 1 || first.fills[0] != p.FirstName {
		t.Errorf("expected first name fill %q, got %v", p.FirstName, first.fills)
	}
	email := s.elems["#email"]
	if len(email.fills) != 1 || email.fills[0] != p.Email {
		t.Errorf("expected email fill %q, got %v", p.Email, email.fills)
	}
}

func TestMachineSecondVariantWhenFirstUnresolvable(t *testing.T) {
	s := journeySession()
	// Break the lead variant: its dob field never appears.
	delete(s.elems, "#dob")
	s.add("#choice", "")
	s.add("#submitGrid", "")

	m := NewMachine(testMachineConfig(testProfile()))
	terminal := m.Run(context.Background(), s, models.Record{})
	if terminal != StateDone {
		t.Fatalf("expected StateDone via the grid variant, got %s", terminal)
	}

	// The lead variant resolved its first field but must not have
	// touched it: the whole required set is bound before any action.
	if s.elems["#name"].touched() {
		t.Error("abandoned variant must not interact with the page")
	}
	if !s.elems["#choice"].touched() {
		t.Error("expected the grid variant's field to be clicked")
	}
	if !s.elems["#submitGrid"].touched() {
		t.Error("expected the grid variant to be submitted")
	}
}

func TestMachineVariantOrderStopsAtFirstSuccess(t *testing.T) {
	s := journeySession()
	s.add("#choice", "")
	s.add("#submitGrid", "")

	m := NewMachine(testMachineConfig(testProfile()))
	m.Run(context.Background(), s, models.Record{})

	if !s.elems["#submitLead"].touched() {
		t.Error("expected the first variant to be handled")
	}
	if s.elems["#choice"].touched() || s.elems["#submitGrid"].touched() {
		t.Error("later variants must be untouched once one succeeds")
	}
}

func TestMachineCascadeVariants(t *testing.T) {
	s := journeySession()
	s.add("#choice", "")
	s.add("#submitGrid", "")

	cfg := testMachineConfig(testProfile())
	cfg.CascadeVariants = true
	m := NewMachine(cfg)
	m.Run(context.Background(), s, models.Record{})

	if !s.elems["#submitLead"].touched() || !s.elems["#submitGrid"].touched() {
		t.Error("cascade mode must attempt every variant")
	}
}

func TestMachineAbandonsWhenNoVariantResolves(t *testing.T) {
	s := newFakeSession()
	m := NewMachine(testMachineConfig(testProfile()))
	rec := models.Record{}

	terminal := m.Run(context.Background(), s, rec)
	if terminal != StateAbandoned {
		t.Fatalf("expected StateAbandoned, got %s", terminal)
	}
	if len(rec) != 0 {
		t.Errorf("abandoned journey must not fabricate fields, got %v", rec)
	}
}

func TestMachineModalAnswersWhenPresent(t *testing.T) {
	s := journeySession()
	for _, sel := range []string{"#modal", "#gender", "#tobacco", "#occupation", "#education", "#modalGo"} {
		s.add(sel, "")
	}

	m := NewMachine(testMachineConfig(testProfile()))
	terminal := m.Run(context.Background(), s, models.Record{})
	if terminal != StateDone {
		t.Fatalf("expected StateDone, got %s", terminal)
	}
	for _, sel := range []string{"#gender", "#tobacco", "#occupation", "#education", "#modalGo"} {
		if !s.elems[sel].touched() {
			t.Errorf("expected modal element %s to be clicked", sel)
		}
	}
}

func TestMachinePremiumMissDoesNotAbort(t *testing.T) {
	s := journeySession()
	delete(s.elems, "#premium")

	m := NewMachine(testMachineConfig(testProfile()))
	rec := models.Record{}
	terminal := m.Run(context.Background(), s, rec)
	if terminal != StateDone {
		t.Fatalf("an extraction miss must not abort the journey, got %s", terminal)
	}
	if _, ok := rec[models.FieldMonthlyPremium]; ok {
		t.Error("missed premium must stay absent, not fabricated")
	}
}

func TestMachineForwardOnlyOnCancelledContext(t *testing.T) {
	s := journeySession()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMachine(testMachineConfig(testProfile()))
	terminal := m.Run(ctx, s, models.Record{})
	if terminal != StateAbandoned {
		t.Fatalf("expected StateAbandoned under a cancelled context, got %s", terminal)
	}
}
