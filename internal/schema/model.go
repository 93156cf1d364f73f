package schema

// Schema is the Schema Model: a mapping from object identity to object
// descriptor. It is a passive value — constructed once by the parser or
// introspector, consumed by the differ, then discarded.
type Schema struct {
	Objects map[Identity]Object
}

// New returns an empty Schema Model.
func New() *Schema {
	return &Schema{Objects: make(map[Identity]Object)}
}

// Put registers a descriptor under its identity. Later calls with the same
// identity overwrite earlier ones — callers are responsible for rejecting
// duplicates via invariant checks.
func (s *Schema) Put(obj Object) {
	if s.Objects == nil {
		s.Objects = make(map[Identity]Object)
	}
	s.Objects[obj.Identity()] = obj
}

// Get looks up a descriptor by identity.
func (s *Schema) Get(id Identity) (Object, bool) {
	obj, ok := s.Objects[id]
	return obj, ok
}

// OfKind returns every descriptor of the given kind, unordered.
func (s *Schema) OfKind(k Kind) []Object {
	var out []Object
	for id, obj := range s.Objects {
		if id.Kind == k {
			out = append(out, obj)
		}
	}
	return out
}

// Object is the interface every kind-specific descriptor satisfies. Dispatch
// on kind is always explicit (a type switch on Object) rather than virtual,
// so adding a kind is checkable by the compiler at every switch site.
type Object interface {
	Identity() Identity
}

// ---- Table ----

type Table struct {
	Schema      string
	Name        string
	Columns     []Column
	PrimaryKey  *PrimaryKeyConstraint
	Unique      []UniqueConstraint
	Checks      []CheckConstraint
	Exclusions  []ExclusionConstraint
	ForeignKeys []ForeignKeyConstraint
	Inherits    []string // fully-qualified parent table names
	Partition   *PartitionSpec
	RLSEnabled  bool
	Comment     string
}

func (t Table) Identity() Identity { return Identity{Schema: t.Schema, Name: t.Name, Kind: KindTable} }

type Column struct {
	Name       string
	Type       string // fully qualified, normalized type name
	Nullable   bool
	Default    string // normalized canonical text; "" means no default
	Identity   IdentityGenKind
	Generated  string // normalized generation expression; "" means not generated
	Comment    string
}

// IdentityGenKind distinguishes plain columns from identity columns.
type IdentityGenKind string

const (
	IdentityNone        IdentityGenKind = ""
	IdentityAlways      IdentityGenKind = "always"
	IdentityByDefault   IdentityGenKind = "by_default"
)

type PrimaryKeyConstraint struct {
	Name    string
	Columns []string
}

type UniqueConstraint struct {
	Name    string
	Columns []string
}

type CheckConstraint struct {
	Name       string
	Expression string // normalized text
}

type ExclusionConstraint struct {
	Name       string
	Method     string // index access method, e.g. "gist"
	Elements   []ExclusionElement
	Predicate  string
}

type ExclusionElement struct {
	Expression string
	Operator   string
}

type ForeignKeyConstraint struct {
	Name              string
	Columns           []string
	ReferencedSchema  string
	ReferencedTable   string
	ReferencedColumns []string
	OnDelete          string // "", "CASCADE", "RESTRICT", "SET NULL", "SET DEFAULT", "NO ACTION"
	OnUpdate          string
	Deferrable        bool
	InitiallyDeferred bool
}

type PartitionSpec struct {
	Strategy string   // "range", "list", "hash"
	Columns  []string // partition key expressions/columns
}

// ---- Index ----

type Index struct {
	Schema     string
	Name       string
	Table      string
	Method     string // btree, hash, gist, spgist, gin, brin
	Keys       []IndexKey
	Include    []string
	Predicate  string // normalized partial-index predicate; "" means none
	Unique     bool
	Storage    map[string]string
	Comment    string
}

func (i Index) Identity() Identity { return Identity{Schema: i.Schema, Name: i.Name, Kind: KindIndex} }

type IndexKey struct {
	Expression string // column name or expression
	Collation  string
	Opclass    string
	Desc       bool
	NullsFirst bool
}

// ---- View / MaterializedView ----

type CheckOption string

const (
	CheckOptionNone     CheckOption = ""
	CheckOptionLocal    CheckOption = "local"
	CheckOptionCascaded CheckOption = "cascaded"
)

type View struct {
	Schema          string
	Name            string
	Query           string // normalized
	CheckOption     CheckOption
	SecurityBarrier bool
	Comment         string
}

func (v View) Identity() Identity { return Identity{Schema: v.Schema, Name: v.Name, Kind: KindView} }

type MaterializedView struct {
	Schema      string
	Name        string
	Query       string
	PopulateNow bool
	Indexes     []Index
	Comment     string
}

func (m MaterializedView) Identity() Identity {
	return Identity{Schema: m.Schema, Name: m.Name, Kind: KindMaterializedView}
}

// ---- Function / Procedure ----

type ParamMode string

const (
	ParamIn       ParamMode = "in"
	ParamOut      ParamMode = "out"
	ParamInOut    ParamMode = "inout"
	ParamVariadic ParamMode = "variadic"
)

type Param struct {
	Name    string
	Mode    ParamMode
	Type    string
	Default string // normalized; "" means no default
}

type ReturnSpec struct {
	SetOf   bool
	Table   []Param // non-empty for RETURNS TABLE(...)
	Type    string  // scalar/composite return type; "" when Table is used
}

type Volatility string

const (
	VolatilityVolatile Volatility = "volatile"
	VolatilityStable   Volatility = "stable"
	VolatilityImmutable Volatility = "immutable"
)

type Function struct {
	Schema          string
	Name            string
	Params          []Param
	Returns         ReturnSpec
	Language        string
	Body            string // opaque, byte-preserved source text; never reformatted or re-parsed
	Volatility      Volatility
	Strict          bool
	SecurityDefiner bool
	IsProcedure     bool
	Comment         string
}

func (f Function) Identity() Identity {
	k := KindFunction
	if f.IsProcedure {
		k = KindProcedure
	}
	return Identity{Schema: f.Schema, Name: f.Name, Kind: k, Signature: ArgSignature(f.Params)}
}

// ArgSignature renders the argument type signature used for overload
// discrimination. Only IN/INOUT/VARIADIC argument types participate,
// matching PostgreSQL's own overload resolution.
func ArgSignature(params []Param) string {
	sig := ""
	for _, p := range params {
		if p.Mode == ParamOut {
			continue
		}
		if sig != "" {
			sig += ","
		}
		sig += p.Type
	}
	return sig
}

// ---- Sequence ----

type Sequence struct {
	Schema      string
	Name        string
	Start       int64
	Increment   int64
	Min         int64
	Max         int64
	Cache       int64
	Cycle       bool
	OwnedByTable  string
	OwnedByColumn string
	Comment     string
}

func (s Sequence) Identity() Identity {
	return Identity{Schema: s.Schema, Name: s.Name, Kind: KindSequence}
}

// ---- Enum ----

type Enum struct {
	Schema  string
	Name    string
	Labels  []string // ordered
	Comment string
}

func (e Enum) Identity() Identity { return Identity{Schema: e.Schema, Name: e.Name, Kind: KindEnum} }

// ---- CompositeType ----

type CompositeAttr struct {
	Name string
	Type string
}

type CompositeType struct {
	Schema     string
	Name       string
	Attributes []CompositeAttr // ordered
	Comment    string
}

func (c CompositeType) Identity() Identity {
	return Identity{Schema: c.Schema, Name: c.Name, Kind: KindCompositeType}
}

// ---- Domain ----

type Domain struct {
	Schema   string
	Name     string
	BaseType string
	NotNull  bool
	Default  string
	Checks   []CheckConstraint
	Comment  string
}

func (d Domain) Identity() Identity { return Identity{Schema: d.Schema, Name: d.Name, Kind: KindDomain} }

// ---- RangeType ----

type RangeType struct {
	Schema          string
	Name            string
	Subtype         string
	SubtypeOpclass  string
	Collation       string
	CanonicalFunc   string
	DiffFunc        string
	MultirangeName  string
	Comment         string
}

func (r RangeType) Identity() Identity {
	return Identity{Schema: r.Schema, Name: r.Name, Kind: KindRangeType}
}

// ---- Extension ----

type Extension struct {
	Name             string
	RequestedVersion string
	Schema           string
}

func (e Extension) Identity() Identity {
	return Identity{Schema: "", Name: e.Name, Kind: KindExtension}
}

// ---- Trigger / ConstraintTrigger / EventTrigger ----

type TriggerTiming string

const (
	TriggerBefore    TriggerTiming = "before"
	TriggerAfter     TriggerTiming = "after"
	TriggerInsteadOf TriggerTiming = "instead_of"
)

type Trigger struct {
	Schema         string
	Name           string
	Table          string
	Timing         TriggerTiming
	Events         []string // subset of INSERT/UPDATE/DELETE/TRUNCATE, in that order
	ForEachRow     bool
	Function       string
	FunctionArgs   []string
	When           string // normalized WHEN condition; "" if none
	OldTransition  string
	NewTransition  string
	Comment        string
}

func (t Trigger) Identity() Identity {
	return Identity{Schema: t.Schema, Name: t.Name, Kind: KindTrigger, Signature: t.Table}
}

type ConstraintTrigger struct {
	Trigger
	Deferrable        bool
	InitiallyDeferred bool
}

func (c ConstraintTrigger) Identity() Identity {
	return Identity{Schema: c.Schema, Name: c.Name, Kind: KindConstraintTrigger, Signature: c.Table}
}

type EventTrigger struct {
	Name     string
	Event    string // ddl_command_start, ddl_command_end, sql_drop, table_rewrite
	Tags     []string
	Function string
	Enabled  bool
}

func (e EventTrigger) Identity() Identity {
	return Identity{Schema: "", Name: e.Name, Kind: KindEventTrigger}
}

// ---- Policy ----

type PolicyCommand string

const (
	PolicyAll    PolicyCommand = "ALL"
	PolicySelect PolicyCommand = "SELECT"
	PolicyInsert PolicyCommand = "INSERT"
	PolicyUpdate PolicyCommand = "UPDATE"
	PolicyDelete PolicyCommand = "DELETE"
)

type Policy struct {
	Schema      string
	Name        string
	Table       string
	Command     PolicyCommand
	Roles       []string
	Using       string
	WithCheck   string
	Permissive  bool
}

func (p Policy) Identity() Identity {
	return Identity{Schema: p.Schema, Name: p.Name, Kind: KindPolicy, Signature: p.Table}
}

// ---- Rule ----

type Rule struct {
	Schema  string
	Name    string
	Table   string
	Event   string // SELECT/INSERT/UPDATE/DELETE
	Where   string
	Instead bool
	Actions []string // normalized action statement texts
}

func (r Rule) Identity() Identity {
	return Identity{Schema: r.Schema, Name: r.Name, Kind: KindRule, Signature: r.Table}
}

// ---- ForeignServer ----

type ForeignServer struct {
	Name    string
	Wrapper string
	Options map[string]string
}

func (f ForeignServer) Identity() Identity {
	return Identity{Schema: "", Name: f.Name, Kind: KindForeignServer}
}

// ---- Collation ----

type Collation struct {
	Schema      string
	Name        string
	Provider    string // icu, libc
	Locale      string
	Deterministic bool
}

func (c Collation) Identity() Identity {
	return Identity{Schema: c.Schema, Name: c.Name, Kind: KindCollation}
}

// ---- Schema (namespace) ----

type SchemaObject struct {
	Name  string
	Owner string
}

func (s SchemaObject) Identity() Identity {
	return Identity{Schema: "", Name: s.Name, Kind: KindSchema}
}

// ---- Comment ----

// Comment attaches descriptive text to any object by identity.
type Comment struct {
	Target Identity
	Text   string
}

func (c Comment) Identity() Identity {
	return Identity{Schema: c.Target.Schema, Name: c.Target.Name, Kind: KindComment, Signature: string(c.Target.Kind) + "/" + c.Target.Signature}
}
