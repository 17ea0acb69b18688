package scaffold

import (
	"errors"
	"testing"
)

func TestEngineApply(t *testing.T) {
	engine := NewEngine(NewConfigMap(
		"_lower_case_", "post",
		"_lower_casePlural_", "posts",
		"_camel_case_", "Post",
		"framework", "Laravel",
	))

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no tokens", "plain $text", "plain $text"},
		{"single token", "class _camel_case_Controller", "class PostController"},
		{"longest token wins", "_lower_casePlural_ and _lower_case_", "posts and post"},
		{"adjacent tokens", "_camel_case__lower_case_", "Postpost"},
		{"non-placeholder keys are ignored", "framework", "framework"},
		{"unknown token left alone", "_unknown_", "_unknown_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Apply(tt.input)
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Apply() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEngineApplyIsIdempotent(t *testing.T) {
	engine := NewEngine(NewConfigMap(
		"_namespace_model_", `App\Repositories\_table_`,
		"_table_", "Post",
	))

	once, err := engine.Apply("use _namespace_model_\\_table_;")
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	twice, err := engine.Apply(once)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if once != twice {
		t.Errorf("Apply() not idempotent: %q then %q", once, twice)
	}
	if want := `use App\Repositories\Post\Post;`; once != want {
		t.Errorf("Apply() = %q, want %q", once, want)
	}
}

func TestEngineApplySelfReference(t *testing.T) {
	engine := NewEngine(NewConfigMap("_loop_", "_loop_x"))

	_, err := engine.Apply("_loop_")
	if err == nil {
		t.Fatal("Apply() expected error for self-referencing value")
	}
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("error = %v, want ErrConfiguration", err)
	}
}

func TestEngineApplySinglePass(t *testing.T) {
	engine := NewEngine(NewConfigMap(
		"_namespace_model_", `App\Repositories\_table_`,
		"_table_", "Post",
	)).With(NewConfigMap("_schema_columns_", "$table->integer('parent_table_id');"))

	got, err := engine.Apply("use _namespace_model_; _schema_columns_")
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if want := `use App\Repositories\Post; $table->integer('parent_table_id');`; got != want {
		t.Errorf("Apply() = %q, want %q", got, want)
	}
}

func TestEngineSelfReferenceOnlyFailsWhenUsed(t *testing.T) {
	engine := NewEngine(NewConfigMap(
		"_a_", "_b_",
		"_b_", "_a_",
		"_camel_case_", "Post",
	))

	if got, err := engine.Apply("_camel_case_"); err != nil || got != "Post" {
		t.Errorf("Apply() = %q, %v; want Post, nil", got, err)
	}
	if _, err := engine.Apply("_a_"); !errors.Is(err, ErrConfiguration) {
		t.Errorf("error = %v, want ErrConfiguration", err)
	}
}

func TestEngineRender(t *testing.T) {
	engine := NewEngine(NewConfigMap("_camel_case_", "Post"))

	artifact, err := engine.Render(Template{RawContent: "class _camel_case_ {}"}, "/app/_camel_case_.php")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if artifact.FinalContent != "class Post {}" {
		t.Errorf("FinalContent = %q", artifact.FinalContent)
	}
	if artifact.OutputPath != "/app/Post.php" {
		t.Errorf("OutputPath = %q", artifact.OutputPath)
	}
}

func TestCompoundTokens(t *testing.T) {
	id, err := ResolveIdentity("shop_product", "")
	if err != nil {
		t.Fatalf("ResolveIdentity() error = %v", err)
	}

	tokens := CompoundTokens(id)
	want := map[string]string{
		TokenTable:            "Product",
		TokenSection:          "Shop",
		TokenSectionLowerCase: "shop",
	}
	for k, v := range want {
		if got := tokens.Value(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}

	plain, _ := ResolveIdentity("posts", "")
	if _, ok := CompoundTokens(plain).Get(TokenSection); ok {
		t.Error("unsectioned identity should not define the section token")
	}
}
