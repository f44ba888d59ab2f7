// Package sslscan decodes sslscan XML reports into a typed document tree.
//
// The tree mirrors the layout written by `sslscan --xml`:
//
//	<document title="SSLScan Results" version="2.0.15">
//	  <ssltest host="example.com" sniname="example.com" port="443">
//	    <protocol type="tls" version="1.2" enabled="1" />
//	    <heartbleed sslversion="TLSv1.2" vulnerable="0" />
//	    <cipher status="preferred" sslversion="TLSv1.2" bits="256" cipher="ECDHE-RSA-AES256-GCM-SHA384" strength="strong" />
//	    <certificates>
//	      <certificate type="short">
//	        <signature-algorithm>sha256WithRSAEncryption</signature-algorithm>
//	        <pk error="false" type="RSA" bits="2048" />
//	        <self-signed>false</self-signed>
//	        <not-valid-before>Jan  1 00:00:00 2023 GMT</not-valid-before>
//	        <not-valid-after>Jan  1 00:00:00 2024 GMT</not-valid-after>
//	        <expired>false</expired>
//	      </certificate>
//	    </certificates>
//	  </ssltest>
//	</document>
//
// Every direct child of the root other than <error> is treated as a scan
// entry, whatever its tag. Optional attributes and elements are decoded into
// pointer fields so that "absent" stays distinguishable from "empty".
//
// This package only decodes. Interpreting the tree (protocol ladder, cipher
// reduction, date parsing) is the job of the normalize package.
package sslscan
