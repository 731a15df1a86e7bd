package cml

const twoAtomCML = `<?xml version="1.0"?>
<cml xmlns="http://www.xml-cml.org/schema">
  <molecule id="m1">
    <atomArray>
      <atom id="a1" elementType="C" x2="5" y2="5"/>
      <atom id="a2" elementType="C" x2="10" y2="10"/>
    </atomArray>
    <bondArray>
      <bond atomRefs2="a1 a2" order="S"/>
    </bondArray>
  </molecule>
</cml>`

// The same ethanol fragment in four schema variants.
const ethanolUnprefixedFlat = `<cml>
  <molecule id="m1">
    <atom id="a1" elementType="C" x2="0" y2="0"/>
    <atom id="a2" elementType="C" x2="1.5" y2="0.75"/>
    <atom id="a3" elementType="O" x2="3" y2="0"/>
    <bond id="b1" atomRefs2="a1 a2" order="S"/>
    <bond id="b2" atomRefs2="a2 a3" order="S"/>
  </molecule>
</cml>`

const ethanolUnprefixedWrapped = `<cml>
  <molecule id="m1">
    <atomArray>
      <atom id="a1" elementType="C" x2="0" y2="0"/>
      <atom id="a2" elementType="C" x2="1.5" y2="0.75"/>
      <atom id="a3" elementType="O" x2="3" y2="0"/>
    </atomArray>
    <bondArray>
      <bond id="b1" atomRefs2="a1 a2" order="S"/>
      <bond id="b2" atomRefs2="a2 a3" order="S"/>
    </bondArray>
  </molecule>
</cml>`

const ethanolPrefixedWrapped = `<cml:cml xmlns:cml="http://www.xml-cml.org/schema">
  <cml:molecule id="m1">
    <cml:atomArray>
      <cml:atom id="a1" elementType="C" x2="0" y2="0"/>
      <cml:atom id="a2" elementType="C" x2="1.5" y2="0.75"/>
      <cml:atom id="a3" elementType="O" x2="3" y2="0"/>
    </cml:atomArray>
    <cml:bondArray>
      <cml:bond id="b1" atomRefs2="a1 a2" order="S"/>
      <cml:bond id="b2" atomRefs2="a2 a3" order="S"/>
    </cml:bondArray>
  </cml:molecule>
</cml:cml>`

const ethanolPrefixedFlat = `<cml:cml xmlns:cml="http://www.xml-cml.org/schema">
  <cml:molecule id="m1">
    <cml:atom id="a1" elementType="C" x2="0" y2="0"/>
    <cml:atom id="a2" elementType="C" x2="1.5" y2="0.75"/>
    <cml:atom id="a3" elementType="O" x2="3" y2="0"/>
    <cml:bond id="b1" atomRefs2="a1 a2" order="S"/>
    <cml:bond id="b2" atomRefs2="a2 a3" order="S"/>
  </cml:molecule>
</cml:cml>`
