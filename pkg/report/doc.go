// Package report defines the lineage report consumed by the graph builder.
//
// A report is the result of one impact analysis: a target column, a summary,
// and the list of packages whose procedures reference it, either directly or
// through another object. The report is loaded once per analysis and treated
// as immutable afterwards.
//
// # Wire Format
//
//	{
//	  "target": {"schema": "SALES", "table": "ORDERS", "column": "STATUS"},
//	  "timestamp": "2024-05-01T10:00:00Z",
//	  "summary": {"totalPackages": 12, "impactedPackages": 3, "totalImpact": 41},
//	  "packageAnalysis": [{
//	    "packageName": "SALES.PKG_ORDERS",
//	    "riskScore": 120,
//	    "directReferences": [{
//	      "procedure": "PROC_A", "stepId": "P1-10", "stepLine": 42,
//	      "references": [{"text": "SELECT ...", "line": 44, "type": "SELECT"}]
//	    }],
//	    "indirectReferences": []
//	  }]
//	}
//
// # Normalization
//
// Reports produced by older analyzers vary in shape. Decoding folds every
// variant into one canonical form so the graph builder never has to guess:
//
//   - a reference may be a bare string (its SQL text) or an object
//   - "sqlText" is accepted for "text", "referenceType" for "type"
//   - a group without a "references" array is itself a single reference
//   - numeric fields may be JSON numbers or numeric strings
//   - a missing procedure becomes [UnknownProcedure]
//
// Line numbers stay optional: [SQLReference.Line] is nil when the report
// carried none, so presenters can fall back to the group's step line.
package report
