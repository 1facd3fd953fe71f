// Package schema loads document type definitions from declarative YAML, JSON
// or TOML files. Each file declares one document type:
//
//	name: project
//	title: Projects
//	fields:
//	  - name: linkMode
//	    type: string
//	    options: [internal, external, none]
//	    initialValue: external
//	    rules:
//	      - required: true
//	  - name: url
//	    type: url
//	    visibleWhen: linkMode == "external"
//	    rules:
//	      - custom:
//	          when: linkMode == "external"
//	          assert: url
//	          message: External URL is required when Link Mode is External
//	preview:
//	  select: {title: name, media: image}
//	  prepare: project
//
// Predicates use the visibility/expr language. Derivations, generators and
// preparers are referenced by name and bound through loader options.
package schema
