package normalize

import "testing"

func TestCleanStripsLabelsAndDuplicates(t *testing.T) {
	got := Clean("Hosting: A: The service costs $10. The service costs $10.")
	want := "The service costs $10."
	if got != want {
		t.Fatalf("Clean() = %q, want %q", got, want)
	}
}

func TestCleanTable(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "question lines removed",
			in:   "Here is what I found.\nQ: What services do you offer?\nA: We offer consulting and training programs.",
			want: "Here is what I found. We offer consulting and training programs.",
		},
		{
			name: "case insensitive dedup keeps first",
			in:   "We serve clients globally. WE SERVE CLIENTS GLOBALLY. Visit our website for details.",
			want: "We serve clients globally. Visit our website for details.",
		},
		{
			name: "short fragments dropped",
			in:   "Yes. We provide expert consulting services for all industries.",
			want: "We provide expert consulting services for all industries.",
		},
		{
			name: "terminal punctuation appended",
			in:   "Our training covers machine learning and data science",
			want: "Our training covers machine learning and data science.",
		},
		{
			name: "question mark preserved",
			in:   "Would you like to know more about our consulting options?",
			want: "Would you like to know more about our consulting options.",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Clean(tc.in); got != tc.want {
				t.Fatalf("Clean(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestCleanReturnsInputWhenCleaningEmptiesIt(t *testing.T) {
	for _, in := range []string{"", "OK.", "Short. Tiny. No."} {
		if got := Clean(in); got != in {
			t.Fatalf("Clean(%q) = %q, want input unchanged", in, got)
		}
	}
}

func TestCleanIdempotentOnOwnOutput(t *testing.T) {
	inputs := []string{
		"Hosting: A: The service costs $10. The service costs $10.",
		"Q: Who are you?\nA: We are a technology company focused on AI solutions.",
		"We offer consulting services. We offer consulting services. Contact us for details.",
		"Our mission is to empower organizations with intelligent solutions",
	}
	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(once)
		if once != twice {
			t.Fatalf("Clean not idempotent: first %q, second %q", once, twice)
		}
	}
}
