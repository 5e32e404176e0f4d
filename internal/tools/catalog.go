package tools

// Tool names, shared by the catalog and the dispatcher's routing table.
const (
	NameListCollections      = "list_collections"
	NameCreateCollection     = "create_collection"
	NameGetCollectionDetails = "get_collection_details"
	NameGetCollectionStats   = "get_collection_stats"
	NameListCollectionFiles  = "list_collection_files"
	NameAddFile              = "add_file"
	NameSearch               = "search"
)

var catalog = []Definition{
	{
		Name:        NameListCollections,
		Description: "List every document collection available to the configured credential.",
	},
	{
		Name:        NameCreateCollection,
		Description: "Create a new document collection with the given name.",
		Params: []Param{
			{Name: "name", Type: "string", Description: "Human-readable name for the collection.", Required: true},
		},
	},
	{
		Name:        NameGetCollectionDetails,
		Description: "Fetch a single collection's id, name, and creation time.",
		Params: []Param{
			{Name: "collection_id", Type: "string", Description: "Identifier of the target collection.", Required: true},
		},
	},
	{
		Name:        NameGetCollectionStats,
		Description: "Fetch server-computed statistics for a collection.",
		Params: []Param{
			{Name: "collection_id", Type: "string", Description: "Identifier of the target collection.", Required: true},
		},
	},
	{
		Name:        NameListCollectionFiles,
		Description: "List the files in a collection together with their indexing status.",
		Params: []Param{
			{Name: "collection_id", Type: "string", Description: "Identifier of the target collection.", Required: true},
		},
	},
	{
		Name:        NameAddFile,
		Description: "Download a document from a URL and add it to a collection for indexing.",
		Params: []Param{
			{Name: "collection_id", Type: "string", Description: "Identifier of the target collection.", Required: true},
			{Name: "name", Type: "string", Description: "File name to record for the document.", Required: true},
			{Name: "url", Type: "string", Description: "Publicly reachable URL of the document to index.", Required: true},
		},
	},
	{
		Name:        NameSearch,
		Description: "Run a semantic search over a collection and return matching passages with scores.",
		Params: []Param{
			{Name: "collection_id", Type: "string", Description: "Identifier of the collection to search.", Required: true},
			{Name: "query", Type: "string", Description: "Natural-language query text.", Required: true},
		},
	},
}

// Catalog returns the tool definitions in stable order.
func Catalog() []Definition {
	out := make([]Definition, len(catalog))
	copy(out, catalog)
	return out
}

// Names returns the tool names in catalog order.
func Names() []string {
	names := make([]string, len(catalog))
	for i, d := range catalog {
		names[i] = d.Name
	}
	return names
}

// Lookup finds a definition by name.
func Lookup(name string) (Definition, bool) {
	for _, d := range catalog {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}
