// Package importer applies and exports the state of a flagkeep instance as
// a YAML document.
//
// A state document lists projects, roles, groups and segments:
//
//	projects:
//	  - id: checkout
//	    name: Checkout
//	    mode: protected
//	roles:
//	  - name: Segment editors
//	    type: root-custom
//	    permissions:
//	      - name: UPDATE_SEGMENT
//	groups:
//	  - name: Developers
//	    rootRole: Editor
//	segments:
//	  - name: beta-users
//	    project: checkout
//	    constraints:
//	      - contextName: userId
//	        operator: IN
//	        values: ["1", "2"]
//
// Entities are matched by project id and by name. Missing entities are
// created and existing ones are updated when they differ. Nothing is ever
// deleted. The whole document is applied in one transaction; a dry run
// applies it and rolls back.
package importer
